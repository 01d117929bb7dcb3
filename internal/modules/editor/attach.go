package editor

import "github.com/mx-space/metafields/internal/models"

func (e *Editor) referenceDefinition() (*models.MetafieldDefinition, error) {
	def := e.activeDefinition()
	if def == nil {
		return nil, ErrNoActiveMetafield
	}
	if isText(def) {
		return nil, ErrNotReference
	}
	return def, nil
}

// PickerRequestFor describes the picker invocation for a product under the
// active metafield. The client opens the picker with it and posts the outcome
// back to Attach.
func (e *Editor) PickerRequestFor(productID string) (PickerRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pickerRequest(productID)
}

func (e *Editor) pickerRequest(productID string) (PickerRequest, error) {
	if productID == "" {
		return PickerRequest{}, ErrProductRequired
	}
	def, err := e.referenceDefinition()
	if err != nil {
		return PickerRequest{}, err
	}
	req := PickerRequest{
		Type:         PickerType(def.Type.Name),
		Multiple:     isList(def),
		SelectionIDs: []string{},
	}
	if entry := e.tab(e.current, e.activeTab)[def.FullKey()].find(productID); entry != nil {
		req.SelectionIDs = entry.ids()
	}
	return req, nil
}

// Attach applies a picker result to the product under the active metafield.
// Single references are overwritten by the first picked entity; lists gain
// the picked entities not already present.
func (e *Editor) Attach(productID string, res PickerResult) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if productID == "" {
		return ErrProductRequired
	}
	return e.attach(productID, res)
}

func (e *Editor) attach(productID string, res PickerResult) error {
	def, err := e.referenceDefinition()
	if err != nil {
		return err
	}
	if res.Cancelled {
		return nil
	}

	cur := e.tab(e.current, e.activeTab)
	key := def.FullKey()
	if len(res.Selection) == 0 {
		cur[key] = cur[key].remove(productID)
		return nil
	}

	if !isList(def) {
		cur[key] = cur[key].upsert(SelectionEntry{
			ProductID:  productID,
			Selections: []Selection{res.Selection[0]},
		})
		return nil
	}

	var existing []Selection
	if entry := cur[key].find(productID); entry != nil {
		existing = entry.Selections
	}
	cur[key] = cur[key].upsert(SelectionEntry{
		ProductID:  productID,
		Selections: unionSelections(existing, res.Selection),
	})
	return nil
}

// Detach removes one entity. For single references the whole entry goes.
func (e *Editor) Detach(productID, entityID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if productID == "" {
		return ErrProductRequired
	}
	def, err := e.referenceDefinition()
	if err != nil {
		return err
	}

	cur := e.tab(e.current, e.activeTab)
	key := def.FullKey()
	if !isList(def) {
		cur[key] = cur[key].remove(productID)
		return nil
	}

	entry := cur[key].find(productID)
	if entry == nil {
		return nil
	}
	kept := make([]Selection, 0, len(entry.Selections))
	for _, s := range entry.Selections {
		if s.ID != entityID {
			kept = append(kept, s)
		}
	}
	entry.Selections = kept
	return nil
}
