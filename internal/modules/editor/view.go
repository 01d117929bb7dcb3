package editor

import (
	"slices"

	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/pkg/shopify"
)

type TabView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ProductView struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Image      string      `json:"image,omitempty"`
	Selections []Selection `json:"selections"`
	Text       *string     `json:"text,omitempty"`
	InstanceID string      `json:"instanceId,omitempty"`
	SaveButton SaveButton  `json:"saveButton"`
}

// View is a read-only snapshot of the editor for rendering.
type View struct {
	Tabs           []TabView                    `json:"tabs"`
	ActiveTab      int                          `json:"activeTab"`
	ActiveKey      string                       `json:"activeKey"`
	Definition     *models.MetafieldDefinition  `json:"definition"`
	Definitions    []models.MetafieldDefinition `json:"definitions"`
	Search         string                       `json:"search"`
	Products       []ProductView                `json:"products"`
	HasNextPage    bool                         `json:"hasNextPage"`
	PendingChanges int                          `json:"pendingChanges"`
}

func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		Tabs:        make([]TabView, 0, len(e.groups)),
		ActiveTab:   e.activeTab,
		ActiveKey:   e.activeKey,
		Definitions: []models.MetafieldDefinition{},
		Search:      e.searchTerm,
		Products:    make([]ProductView, 0, len(e.products)),
		HasNextPage: e.hasNext,
	}
	for _, g := range e.groups {
		v.Tabs = append(v.Tabs, TabView{ID: g.ID, Name: g.Name, Count: len(g.Definitions)})
	}
	if g := e.activeGroup(); g != nil {
		v.Definitions = slices.Clone(g.Definitions)
	}

	def := e.activeDefinition()
	if def != nil {
		d := *def
		v.Definition = &d
	}
	for _, p := range e.products {
		v.Products = append(v.Products, e.productView(def, p))
	}
	v.PendingChanges = e.pendingChanges()
	return v
}

func (e *Editor) productView(def *models.MetafieldDefinition, p shopify.Product) ProductView {
	pv := ProductView{
		ID:         p.ID,
		Title:      p.Title,
		Selections: []Selection{},
		SaveButton: e.saveButtons[p.ID],
	}
	if len(p.Images) > 0 {
		pv.Image = p.Images[0]
	}
	if def == nil {
		return pv
	}
	pv.InstanceID = e.instanceID(p.ID, def.FullKey())
	if isText(def) {
		text := e.textValues[def.FullKey()][p.ID]
		pv.Text = &text
		return pv
	}
	if entry := e.tab(e.current, e.activeTab)[def.FullKey()].find(p.ID); entry != nil {
		pv.Selections = slices.Clone(entry.Selections)
	}
	return pv
}
