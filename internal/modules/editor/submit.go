package editor

import (
	"context"
	"fmt"
	"slices"

	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/pkg/shopify"
	"go.uber.org/zap"
)

type changeKind int

const (
	changeUpdate changeKind = iota
	changeClear
	changeDelete
)

type change struct {
	kind       changeKind
	productID  string
	selections []Selection
}

// SubmitFailure is one row that could not be persisted.
type SubmitFailure struct {
	ProductID string `json:"productId"`
	Error     string `json:"error"`
}

// SubmitReport summarizes a bulk submit.
type SubmitReport struct {
	Key      string          `json:"key"`
	Updated  int             `json:"updated"`
	Cleared  int             `json:"cleared"`
	Deleted  int             `json:"deleted"`
	Failures []SubmitFailure `json:"failures"`
}

func (r SubmitReport) Calls() int {
	return r.Updated + r.Cleared + r.Deleted + len(r.Failures)
}

// plan diffs the active key's current selections against the baseline.
// Removals come first in baseline order, then changed rows in current order.
func (e *Editor) plan(def *models.MetafieldDefinition) []change {
	cur := e.tab(e.current, e.activeTab)[def.FullKey()]
	ini := e.tab(e.initial, e.activeTab)[def.FullKey()]

	var out []change
	for _, base := range ini {
		if len(base.Selections) == 0 {
			continue
		}
		now := cur.find(base.ProductID)
		if now != nil && len(now.Selections) > 0 {
			continue
		}
		kind := changeDelete
		if isList(def) {
			kind = changeClear
		}
		out = append(out, change{kind: kind, productID: base.ProductID})
	}

	for _, now := range cur {
		if len(now.Selections) == 0 {
			continue
		}
		if base := ini.find(now.ProductID); base != nil && slices.Equal(base.Selections, now.Selections) {
			continue
		}
		out = append(out, change{kind: changeUpdate, productID: now.ProductID, selections: now.Selections})
	}
	return out
}

// PendingChanges counts the rows a submit would send for the active key.
func (e *Editor) PendingChanges() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendingChanges()
}

func (e *Editor) pendingChanges() int {
	def := e.activeDefinition()
	if def == nil || isText(def) {
		return 0
	}
	return len(e.plan(def))
}

// Submit sends every changed row of the active reference metafield, one call
// at a time. A failed row is reported and left pending; rows already sent are
// not rolled back.
func (e *Editor) Submit(ctx context.Context) (SubmitReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	def, err := e.referenceDefinition()
	if err != nil {
		return SubmitReport{}, err
	}

	report := SubmitReport{Key: def.FullKey(), Failures: []SubmitFailure{}}
	for _, c := range e.plan(def) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := e.apply(ctx, def, c); err != nil {
			report.Failures = append(report.Failures, SubmitFailure{ProductID: c.productID, Error: err.Error()})
			continue
		}
		switch c.kind {
		case changeUpdate:
			report.Updated++
		case changeClear:
			report.Cleared++
		case changeDelete:
			report.Deleted++
		}
	}

	e.logger.Info("metafield submit finished",
		zap.String("key", def.FullKey()),
		zap.Int("updated", report.Updated),
		zap.Int("cleared", report.Cleared),
		zap.Int("deleted", report.Deleted),
		zap.Int("failed", len(report.Failures)))

	switch {
	case len(report.Failures) > 0:
		e.toast(fmt.Sprintf("%d of %d changes failed", len(report.Failures), report.Calls()), true)
	case report.Calls() == 0:
		e.toast("No changes to save", false)
	default:
		e.toast("Metafields saved", false)
	}
	return report, nil
}

func (e *Editor) apply(ctx context.Context, def *models.MetafieldDefinition, c change) error {
	key := def.FullKey()
	fields := []zap.Field{zap.String("product", c.productID), zap.String("key", key)}
	ini := e.tab(e.initial, e.activeTab)

	switch c.kind {
	case changeDelete:
		id := e.instanceID(c.productID, key)
		if id == "" {
			return e.fail("Failed to delete metafield", fmt.Errorf("no metafield instance for %s", c.productID), fields...)
		}
		if _, err := e.api.DeleteMetafield(ctx, id); err != nil {
			return e.fail("Failed to delete metafield", err, fields...)
		}
		e.clearInstanceID(c.productID, key)
		ini[key] = ini[key].remove(c.productID)
		return nil

	case changeClear:
		mf, err := e.api.SetProductMetafield(ctx, c.productID, shopify.MetafieldInput{
			Namespace: def.Namespace,
			Key:       def.Key,
			Value:     "[]",
			Type:      def.Type.Name,
		})
		if err != nil {
			return e.fail("Failed to clear metafield", err, fields...)
		}
		if mf.ID != "" {
			e.setInstanceID(c.productID, key, mf.ID)
		}
		ini[key] = ini[key].remove(c.productID)
		return nil
	}

	value, err := encodeValue(def, c.selections)
	if err != nil {
		return e.fail("Failed to encode metafield", err, fields...)
	}
	mf, err := e.api.SetProductMetafield(ctx, c.productID, shopify.MetafieldInput{
		Namespace: def.Namespace,
		Key:       def.Key,
		Value:     value,
		Type:      def.Type.Name,
	})
	if err != nil {
		return e.fail("Failed to update metafield", err, fields...)
	}
	if mf.ID != "" {
		e.setInstanceID(c.productID, key, mf.ID)
	}
	ini[key] = ini[key].upsert(SelectionEntry{ProductID: c.productID, Selections: slices.Clone(c.selections)})
	return nil
}
