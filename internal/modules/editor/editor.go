package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/modules/groups"
	"github.com/mx-space/metafields/internal/pkg/shopify"
	"go.uber.org/zap"
)

const DefaultPageSize = 5

var (
	ErrNoGroups          = errors.New("no metafield groups")
	ErrTabOutOfRange     = errors.New("tab index out of range")
	ErrUnknownMetafield  = errors.New("metafield is not assigned to the active group")
	ErrNoActiveMetafield = errors.New("no active metafield")
	ErrNotReference      = errors.New("active metafield is not a reference type")
	ErrNotText           = errors.New("active metafield is not a text type")
	ErrProductRequired   = errors.New("product id is required")
)

// SaveButton is the per-product save state of a text metafield.
type SaveButton struct {
	Disabled bool `json:"disabled"`
	Loading  bool `json:"loading"`
}

// Editor holds the assignment state of one admin user. All methods are safe
// for concurrent use; each runs to completion under the editor lock.
type Editor struct {
	mu sync.Mutex

	api      API
	notifier Notifier
	logger   *zap.Logger
	pageSize int

	groups     []groups.Group
	activeTab  int
	activeKey  string
	searchTerm string

	products []shopify.Product
	cursor   string
	hasNext  bool
	stale    bool

	// Metafield state is keyed by the definition's "namespace.key".
	current map[int]tabState
	initial map[int]tabState
	// loaded records products already merged per tab and key, so unsent
	// edits (including removed entries) survive reloads.
	loaded map[int]map[string]map[string]bool

	textValues  map[string]map[string]string // key -> product -> buffer
	instanceIDs map[string]map[string]string // product -> key -> metafield id
	saveButtons map[string]SaveButton
}

type Option func(*Editor)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(e *Editor) {
		if n != nil {
			e.notifier = n
		}
	}
}

func WithPageSize(size int) Option {
	return func(e *Editor) {
		if size > 0 {
			e.pageSize = size
		}
	}
}

// New creates an editor over the given groups in tab order. Call Reload to
// fetch the first page.
func New(api API, tabs []groups.Group, opts ...Option) *Editor {
	e := &Editor{
		api:         api,
		notifier:    NotifierFunc(func(Toast) {}),
		logger:      zap.NewNop(),
		pageSize:    DefaultPageSize,
		groups:      slices.Clone(tabs),
		current:     map[int]tabState{},
		initial:     map[int]tabState{},
		loaded:      map[int]map[string]map[string]bool{},
		textValues:  map[string]map[string]string{},
		instanceIDs: map[string]map[string]string{},
		saveButtons: map[string]SaveButton{},
		stale:       true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resetActiveKey()
	return e
}

func (e *Editor) activeGroup() *groups.Group {
	if e.activeTab < 0 || e.activeTab >= len(e.groups) {
		return nil
	}
	return &e.groups[e.activeTab]
}

// definition resolves key against the active group. key is normally the
// "namespace.key" form; a bare key is accepted when no other definition in
// the group shares it.
func (e *Editor) definition(key string) *models.MetafieldDefinition {
	g := e.activeGroup()
	if g == nil || key == "" {
		return nil
	}
	var bare *models.MetafieldDefinition
	for i := range g.Definitions {
		d := &g.Definitions[i]
		if d.FullKey() == key {
			return d
		}
		if d.Key == key {
			if bare != nil {
				return nil
			}
			bare = d
		}
	}
	return bare
}

func (e *Editor) activeDefinition() *models.MetafieldDefinition {
	return e.definition(e.activeKey)
}

func (e *Editor) resetActiveKey() {
	e.activeKey = ""
	if g := e.activeGroup(); g != nil && len(g.Definitions) > 0 {
		e.activeKey = g.Definitions[0].FullKey()
	}
}

func (e *Editor) tab(states map[int]tabState, idx int) tabState {
	ts, ok := states[idx]
	if !ok {
		ts = tabState{}
		states[idx] = ts
	}
	return ts
}

func (e *Editor) loadedSet(idx int, key string) map[string]bool {
	byKey, ok := e.loaded[idx]
	if !ok {
		byKey = map[string]map[string]bool{}
		e.loaded[idx] = byKey
	}
	set, ok := byKey[key]
	if !ok {
		set = map[string]bool{}
		byKey[key] = set
	}
	return set
}

func (e *Editor) toast(message string, isErr bool) {
	e.notifier.Notify(Toast{Message: message, Error: isErr})
}

func (e *Editor) fail(message string, err error, fields ...zap.Field) error {
	e.logger.Error(message, append(fields, zap.Error(err))...)
	e.toast(message, true)
	return fmt.Errorf("%s: %w", message, err)
}

// Reload discards the product list and fetches the first page again.
func (e *Editor) Reload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reload(ctx)
}

// EnsureLoaded reloads only when the product list was invalidated.
func (e *Editor) EnsureLoaded(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.stale {
		return nil
	}
	return e.reload(ctx)
}

func (e *Editor) reload(ctx context.Context) error {
	e.products = nil
	e.cursor = ""
	e.hasNext = false
	e.stale = false
	if e.activeGroup() == nil {
		return nil
	}
	return e.loadPage(ctx, "")
}

// LoadNextPage appends the next page. It is a no-op when there is none.
func (e *Editor) LoadNextPage(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasNext || e.cursor == "" {
		return nil
	}
	return e.loadPage(ctx, e.cursor)
}

// SwitchTab activates the group at index. State of every tab is retained.
func (e *Editor) SwitchTab(ctx context.Context, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.groups) == 0 {
		return ErrNoGroups
	}
	if index < 0 || index >= len(e.groups) {
		return ErrTabOutOfRange
	}
	e.activeTab = index
	e.resetActiveKey()
	return e.reload(ctx)
}

// SelectMetafield changes the active key within the active group.
func (e *Editor) SelectMetafield(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	def := e.definition(key)
	if def == nil {
		return ErrUnknownMetafield
	}
	e.activeKey = def.FullKey()
	return nil
}

// Search sets the title filter and reloads from the first page.
func (e *Editor) Search(ctx context.Context, term string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.searchTerm = term
	return e.reload(ctx)
}

func (e *Editor) loadPage(ctx context.Context, after string) error {
	g := e.activeGroup()
	keys := make([]string, 0, len(g.Definitions))
	for _, d := range g.Definitions {
		keys = append(keys, d.FullKey())
	}

	page, err := e.api.SearchProducts(ctx, shopify.ProductSearch{
		Query:         shopify.TitleQuery(e.searchTerm),
		After:         after,
		First:         e.pageSize,
		MetafieldKeys: keys,
	})
	if err != nil {
		return e.fail("Failed to load products", err, zap.String("search", e.searchTerm))
	}

	for _, edge := range page.Edges {
		e.products = append(e.products, edge.Node)
		e.mergeProduct(edge.Node)
	}
	e.hasNext = page.HasNextPage
	e.cursor = ""
	if page.HasNextPage && len(page.Edges) > 0 {
		e.cursor = page.Edges[len(page.Edges)-1].Cursor
	}
	return nil
}

// mergeProduct records a fetched product's values for every definition of
// the active group. Merging is append-only: products already loaded under a
// key keep their current and baseline entries.
func (e *Editor) mergeProduct(p shopify.Product) {
	g := e.activeGroup()
	cur := e.tab(e.current, e.activeTab)
	ini := e.tab(e.initial, e.activeTab)

	if _, ok := e.saveButtons[p.ID]; !ok {
		e.saveButtons[p.ID] = SaveButton{Disabled: true}
	}

	for i := range g.Definitions {
		def := &g.Definitions[i]
		key := def.FullKey()
		mf, found := findMetafield(p, def)
		if found && mf.ID != "" {
			e.setInstanceID(p.ID, key, mf.ID)
		}

		if isText(def) {
			buf, ok := e.textValues[key]
			if !ok {
				buf = map[string]string{}
				e.textValues[key] = buf
			}
			if _, ok := buf[p.ID]; !ok {
				buf[p.ID] = ""
				if found {
					buf[p.ID] = mf.Value
				}
			}
			continue
		}

		seen := e.loadedSet(e.activeTab, key)
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if !found {
			continue
		}

		sels, err := parseSelections(def, mf)
		if err != nil {
			e.logger.Warn("unparseable metafield value, treating as empty",
				zap.String("product", p.ID), zap.String("key", key), zap.Error(err))
			continue
		}
		if len(sels) == 0 {
			continue
		}
		entry := SelectionEntry{ProductID: p.ID, Selections: sels}
		if cur[key].find(p.ID) == nil {
			cur[key] = append(cur[key], entry.clone())
		}
		if ini[key].find(p.ID) == nil {
			ini[key] = append(ini[key], entry.clone())
		}
	}
}

func findMetafield(p shopify.Product, def *models.MetafieldDefinition) (shopify.Metafield, bool) {
	for _, mf := range p.Metafields {
		if mf.Key == def.Key && mf.Namespace == def.Namespace {
			return mf, true
		}
	}
	return shopify.Metafield{}, false
}

func (e *Editor) setInstanceID(productID, key, id string) {
	byKey, ok := e.instanceIDs[productID]
	if !ok {
		byKey = map[string]string{}
		e.instanceIDs[productID] = byKey
	}
	byKey[key] = id
}

func (e *Editor) instanceID(productID, key string) string {
	return e.instanceIDs[productID][key]
}

func (e *Editor) clearInstanceID(productID, key string) {
	delete(e.instanceIDs[productID], key)
}
