package editor

import (
	"context"

	"github.com/mx-space/metafields/internal/pkg/shopify"
)

// API is the Admin API surface the editor drives.
type API interface {
	SearchProducts(ctx context.Context, search shopify.ProductSearch) (shopify.ProductPage, error)
	SetProductMetafield(ctx context.Context, productID string, input shopify.MetafieldInput) (shopify.Metafield, error)
	DeleteMetafield(ctx context.Context, metafieldID string) (string, error)
}

// Toast is a short user-visible message.
type Toast struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

// Notifier shows toasts.
type Notifier interface {
	Notify(t Toast)
}

type NotifierFunc func(t Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// PickerRequest describes how the resource picker should be opened.
type PickerRequest struct {
	Type         string   `json:"type"`
	Multiple     bool     `json:"multiple"`
	SelectionIDs []string `json:"selectionIds"`
}

// PickerResult is what the picker returned. A cancelled pick changes nothing;
// an empty, non-cancelled selection clears the entry.
type PickerResult struct {
	Cancelled bool        `json:"cancelled"`
	Selection []Selection `json:"selection"`
}
