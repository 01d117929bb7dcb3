package editor

import (
	"context"

	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/pkg/shopify"
	"go.uber.org/zap"
)

func (e *Editor) textDefinition() (*models.MetafieldDefinition, error) {
	def := e.activeDefinition()
	if def == nil {
		return nil, ErrNoActiveMetafield
	}
	if !isText(def) {
		return nil, ErrNotText
	}
	return def, nil
}

// EditText updates the product's buffer for the active text metafield and
// enables its save button. Nothing is sent.
func (e *Editor) EditText(productID, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if productID == "" {
		return ErrProductRequired
	}
	def, err := e.textDefinition()
	if err != nil {
		return err
	}

	buf, ok := e.textValues[def.FullKey()]
	if !ok {
		buf = map[string]string{}
		e.textValues[def.FullKey()] = buf
	}
	buf[productID] = value
	btn := e.saveButtons[productID]
	btn.Disabled = false
	e.saveButtons[productID] = btn
	return nil
}

// SaveText persists the product's buffer for the active text metafield. An
// empty buffer deletes the metafield instance when one exists and is a no-op
// otherwise; anything else is written as-is with the definition's type.
func (e *Editor) SaveText(ctx context.Context, productID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if productID == "" {
		return ErrProductRequired
	}
	def, err := e.textDefinition()
	if err != nil {
		return err
	}

	value := e.textValues[def.FullKey()][productID]
	e.saveButtons[productID] = SaveButton{Disabled: e.saveButtons[productID].Disabled, Loading: true}

	err = e.saveText(ctx, def, productID, value)
	e.saveButtons[productID] = SaveButton{Disabled: err == nil, Loading: false}
	return err
}

func (e *Editor) saveText(ctx context.Context, def *models.MetafieldDefinition, productID, value string) error {
	key := def.FullKey()
	fields := []zap.Field{zap.String("product", productID), zap.String("key", key)}

	if value == "" {
		id := e.instanceID(productID, key)
		if id == "" {
			return nil
		}
		if _, err := e.api.DeleteMetafield(ctx, id); err != nil {
			return e.fail("Failed to delete metafield", err, fields...)
		}
		e.clearInstanceID(productID, key)
		e.logger.Info("text metafield deleted", fields...)
		e.toast("Metafield deleted", false)
		return nil
	}

	mf, err := e.api.SetProductMetafield(ctx, productID, shopify.MetafieldInput{
		Namespace: def.Namespace,
		Key:       def.Key,
		Value:     value,
		Type:      def.Type.Name,
	})
	if err != nil {
		return e.fail("Failed to save metafield", err, fields...)
	}
	if mf.ID != "" {
		e.setInstanceID(productID, key, mf.ID)
	}
	e.logger.Info("text metafield saved", fields...)
	e.toast("Metafield saved", false)
	return nil
}
