package editor

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/pkg/shopify"
)

// fallbackTitle labels a list id that has no matching resolved reference.
const fallbackTitle = "Product"

// Selection is one referenced entity attached to a product.
type Selection struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

// SelectionEntry is the selection of one product under one metafield key.
type SelectionEntry struct {
	ProductID  string      `json:"productId"`
	Selections []Selection `json:"selections"`
}

func (e SelectionEntry) clone() SelectionEntry {
	return SelectionEntry{ProductID: e.ProductID, Selections: slices.Clone(e.Selections)}
}

func (e SelectionEntry) ids() []string {
	out := make([]string, 0, len(e.Selections))
	for _, s := range e.Selections {
		out = append(out, s.ID)
	}
	return out
}

// entries is the ordered list of selection entries for one key.
type entries []SelectionEntry

func (es entries) index(productID string) int {
	return slices.IndexFunc(es, func(e SelectionEntry) bool { return e.ProductID == productID })
}

func (es entries) find(productID string) *SelectionEntry {
	if i := es.index(productID); i >= 0 {
		return &es[i]
	}
	return nil
}

// upsert replaces the entry for e.ProductID in place or appends it.
func (es entries) upsert(e SelectionEntry) entries {
	if i := es.index(e.ProductID); i >= 0 {
		es[i] = e
		return es
	}
	return append(es, e)
}

func (es entries) remove(productID string) entries {
	if i := es.index(productID); i >= 0 {
		return slices.Delete(es, i, i+1)
	}
	return es
}

// tabState maps a metafield key to its entries for one tab.
type tabState map[string]entries

func selectionFromEntity(e shopify.Entity) Selection {
	s := Selection{ID: e.ID, Title: e.Title}
	if len(e.Images) > 0 {
		s.Image = e.Images[0]
	}
	return s
}

func selectionsFromEntities(es []shopify.Entity) []Selection {
	out := make([]Selection, 0, len(es))
	for _, e := range es {
		out = append(out, selectionFromEntity(e))
	}
	return out
}

// parseSelections turns a stored metafield value into selections. List values
// are JSON id arrays resolved against the embedded references; ids without a
// resolved reference keep a placeholder title. Single references use the
// direct reference. A list value that is not valid JSON yields no selections
// and an error for the caller to log.
func parseSelections(def *models.MetafieldDefinition, mf shopify.Metafield) ([]Selection, error) {
	if !isList(def) {
		if mf.Reference == nil || mf.Reference.ID == "" {
			return nil, nil
		}
		return []Selection{selectionFromEntity(*mf.Reference)}, nil
	}

	if mf.Value == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(mf.Value), &ids); err != nil {
		return nil, fmt.Errorf("parse %s value for %s: %w", def.Key, mf.ID, err)
	}

	resolved := make(map[string]shopify.Entity, len(mf.References))
	for _, ref := range mf.References {
		resolved[ref.ID] = ref
	}
	out := make([]Selection, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if ref, ok := resolved[id]; ok {
			out = append(out, selectionFromEntity(ref))
			continue
		}
		out = append(out, Selection{ID: id, Title: fallbackTitle})
	}
	return out, nil
}

// unionSelections appends picked entities not already present. Existing
// selections keep their position and content.
func unionSelections(existing, picked []Selection) []Selection {
	out := slices.Clone(existing)
	for _, p := range picked {
		if p.ID == "" {
			continue
		}
		if slices.ContainsFunc(out, func(s Selection) bool { return s.ID == p.ID }) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// encodeValue serializes selections for productUpdate: a JSON id array for
// list types, the bare id otherwise.
func encodeValue(def *models.MetafieldDefinition, sels []Selection) (string, error) {
	if isList(def) {
		ids := make([]string, 0, len(sels))
		for _, s := range sels {
			ids = append(ids, s.ID)
		}
		b, err := json.Marshal(ids)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	if len(sels) == 0 {
		return "", nil
	}
	return sels[0].ID, nil
}
