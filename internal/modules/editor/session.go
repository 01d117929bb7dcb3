package editor

import (
	"context"
	"time"

	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/modules/groups"
	"github.com/mx-space/metafields/internal/pkg/session"
	"go.uber.org/zap"
)

// GroupSource lists the groups a new session starts with.
type GroupSource interface {
	List(ctx context.Context) ([]groups.Group, error)
}

// Session is one admin user's editor with its pending toast.
type Session struct {
	ID     string
	Editor *Editor
	Toasts *ToastBuffer
}

// SessionView is returned by every session endpoint.
type SessionView struct {
	SessionID string `json:"sessionId"`
	View
	Toast *Toast `json:"toast"`
}

func (s *Session) Snapshot() SessionView {
	return SessionView{SessionID: s.ID, View: s.Editor.View(), Toast: s.Toasts.Take()}
}

// Manager owns live editor sessions and keeps them in step with the group
// registry.
type Manager struct {
	api      API
	source   GroupSource
	logger   *zap.Logger
	pageSize int
	store    *session.Store[*Session]
}

type ManagerOption func(*Manager)

func WithManagerLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithManagerPageSize(size int) ManagerOption {
	return func(m *Manager) {
		if size > 0 {
			m.pageSize = size
		}
	}
}

func NewManager(api API, source GroupSource, opts ...ManagerOption) *Manager {
	m := &Manager{
		api:      api,
		source:   source,
		logger:   zap.NewNop(),
		pageSize: DefaultPageSize,
		store:    session.NewStore[*Session](),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("EditorManager")
	return m
}

// Open starts a session for owner over the current groups and loads the
// first page of the first tab.
func (m *Manager) Open(ctx context.Context, owner string) (*Session, error) {
	tabs, err := m.source.List(ctx)
	if err != nil {
		return nil, err
	}
	toasts := NewToastBuffer(m.logger)
	s := &Session{
		Editor: New(m.api, tabs,
			WithLogger(m.logger),
			WithNotifier(toasts),
			WithPageSize(m.pageSize)),
		Toasts: toasts,
	}
	entry := m.store.Issue(owner, s)
	s.ID = entry.ID
	m.logger.Info("editor session opened", zap.String("session", s.ID), zap.String("owner", owner), zap.Int("tabs", len(tabs)))

	if err := s.Editor.EnsureLoaded(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func (m *Manager) Get(owner, id string) (*Session, error) {
	entry, err := m.store.Get(owner, id)
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// SessionSummary describes one open session without its editor state.
type SessionSummary struct {
	ID        string    `json:"id"`
	Tabs      int       `json:"tabs"`
	Pending   int       `json:"pendingChanges"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"modified"`
}

// List returns owner's open sessions, most recently used first.
func (m *Manager) List(owner string) []SessionSummary {
	active := m.store.ListActive(owner)
	out := make([]SessionSummary, 0, len(active))
	for _, s := range active {
		v := s.Value.Editor.View()
		out = append(out, SessionSummary{
			ID:        s.ID,
			Tabs:      len(v.Tabs),
			Pending:   v.PendingChanges,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return out
}

func (m *Manager) Close(owner, id string) error {
	if err := m.store.Revoke(owner, id); err != nil {
		return err
	}
	m.logger.Info("editor session closed", zap.String("session", id))
	return nil
}

// EvictIdle drops sessions unused for ttl. Unsubmitted edits are lost.
func (m *Manager) EvictIdle(ttl time.Duration) int {
	n := m.store.EvictIdle(ttl)
	if n > 0 {
		m.logger.Info("evicted idle editor sessions", zap.Int("count", n))
	}
	return n
}

func (m *Manager) Len() int { return m.store.Len() }

func (m *Manager) each(fn func(*Editor)) {
	var editors []*Editor
	m.store.Each(func(s *session.Session[*Session]) {
		editors = append(editors, s.Value.Editor)
	})
	for _, e := range editors {
		fn(e)
	}
}

func (m *Manager) GroupCreated(group groups.Group) {
	m.each(func(e *Editor) { e.AddGroup(group) })
}

func (m *Manager) GroupDeleted(id string) {
	m.each(func(e *Editor) { e.RemoveGroup(id) })
}

func (m *Manager) DefinitionsReplaced(id string, defs []models.MetafieldDefinition) {
	m.each(func(e *Editor) { e.ReplaceDefinitions(id, defs) })
}

var _ groups.Listener = (*Manager)(nil)
