package editor

import (
	"slices"

	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/modules/groups"
)

// AddGroup appends a new tab.
func (e *Editor) AddGroup(g groups.Group) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if slices.ContainsFunc(e.groups, func(x groups.Group) bool { return x.ID == g.ID }) {
		return
	}
	e.groups = append(e.groups, g)
	if len(e.groups) == 1 {
		e.activeTab = 0
		e.resetActiveKey()
		e.stale = true
	}
}

// RemoveGroup drops a tab with its state. Later tabs shift down by one and
// the first tab becomes active.
func (e *Editor) RemoveGroup(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.groups, func(g groups.Group) bool { return g.ID == id })
	if idx < 0 {
		return
	}
	e.groups = slices.Delete(e.groups, idx, idx+1)
	e.current = shiftTabs(e.current, idx)
	e.initial = shiftTabs(e.initial, idx)
	e.loaded = shiftTabs(e.loaded, idx)

	e.activeTab = 0
	e.resetActiveKey()
	e.products = nil
	e.cursor = ""
	e.hasNext = false
	e.stale = true
}

// ReplaceDefinitions swaps a group's assigned definitions. State already
// recorded for keys that remain is kept.
func (e *Editor) ReplaceDefinitions(id string, defs []models.MetafieldDefinition) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.groups, func(g groups.Group) bool { return g.ID == id })
	if idx < 0 {
		return
	}
	e.groups[idx].Definitions = slices.Clone(defs)
	if idx != e.activeTab {
		return
	}
	if e.activeDefinition() == nil {
		e.resetActiveKey()
	}
	e.stale = true
}

func shiftTabs[V any](states map[int]V, removed int) map[int]V {
	out := make(map[int]V, len(states))
	for i, v := range states {
		switch {
		case i < removed:
			out[i] = v
		case i > removed:
			out[i-1] = v
		}
	}
	return out
}
