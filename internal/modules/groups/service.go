package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mx-space/metafields/internal/models"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("metafield group not found")
	ErrNameRequired  = errors.New("group name is required")
	ErrDuplicateName = errors.New("a group with this name already exists")
)

// Group is a metafield group with its definitions decoded.
type Group struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Definitions []models.MetafieldDefinition `json:"metafields"`
	Created     time.Time                    `json:"created"`
	Modified    time.Time                    `json:"modified"`
}

// Listener is told about registry changes so editor state can follow.
type Listener interface {
	GroupCreated(group Group)
	GroupDeleted(id string)
	DefinitionsReplaced(id string, defs []models.MetafieldDefinition)
}

// Registry owns metafield groups. Names are unique case-insensitively by
// convention only: the check runs against the listed groups, not a constraint.
type Registry struct {
	store  Store
	logger *zap.Logger

	mu        sync.RWMutex
	listeners []Listener
}

type Option func(*Registry)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRegistry(store Store, opts ...Option) *Registry {
	r := &Registry{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("GroupRegistry")
	return r
}

// Subscribe registers l for change notifications.
func (r *Registry) Subscribe(l Listener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

func (r *Registry) each(fn func(Listener)) {
	r.mu.RLock()
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, l := range listeners {
		fn(l)
	}
}

// List returns all groups in tab order.
func (r *Registry) List(ctx context.Context) ([]Group, error) {
	rows, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	out := make([]Group, 0, len(rows))
	for i := range rows {
		out = append(out, r.toGroup(&rows[i]))
	}
	return out, nil
}

// Create persists a new group with no definitions. A name matching an
// existing group case-insensitively is rejected before anything is written.
func (r *Registry) Create(ctx context.Context, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	existing, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if HasName(existing, name) {
		return nil, ErrDuplicateName
	}

	row := models.MetafieldGroupModel{Name: name, Metafields: "[]"}
	if err := r.store.Create(ctx, &row); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	group := r.toGroup(&row)
	r.logger.Info("group created", zap.String("id", group.ID), zap.String("name", group.Name))
	r.each(func(l Listener) { l.GroupCreated(group) })
	return &group, nil
}

// SetDefinitions replaces the group's definitions wholesale.
func (r *Registry) SetDefinitions(ctx context.Context, id string, defs []models.MetafieldDefinition) (*Group, error) {
	if defs == nil {
		defs = []models.MetafieldDefinition{}
	}
	raw, err := models.EncodeDefinitions(defs)
	if err != nil {
		return nil, fmt.Errorf("encode definitions: %w", err)
	}
	row, err := r.store.UpdateMetafields(ctx, id, raw)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update group: %w", err)
	}
	group := r.toGroup(row)
	r.each(func(l Listener) { l.DefinitionsReplaced(id, group.Definitions) })
	return &group, nil
}

// Delete removes the group. Listeners drop any per-tab state for it.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete group: %w", err)
	}
	r.logger.Info("group deleted", zap.String("id", id))
	r.each(func(l Listener) { l.GroupDeleted(id) })
	return nil
}

func (r *Registry) toGroup(row *models.MetafieldGroupModel) Group {
	defs, err := models.DecodeDefinitions(row.Metafields)
	if err != nil {
		r.logger.Warn("malformed group definitions, treating as empty",
			zap.String("id", row.ID), zap.Error(err))
	}
	return Group{
		ID:          row.ID,
		Name:        row.Name,
		Definitions: defs,
		Created:     row.CreatedAt,
		Modified:    row.UpdatedAt,
	}
}

// HasName reports whether any group is named name, ignoring case and
// surrounding whitespace.
func HasName(groups []Group, name string) bool {
	name = strings.TrimSpace(name)
	for _, g := range groups {
		if strings.EqualFold(strings.TrimSpace(g.Name), name) {
			return true
		}
	}
	return false
}
