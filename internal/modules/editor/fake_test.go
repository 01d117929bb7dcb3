package editor

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/modules/groups"
	"github.com/mx-space/metafields/internal/pkg/shopify"
	"go.uber.org/zap/zaptest"
)

type setCall struct {
	ProductID string
	Input     shopify.MetafieldInput
}

// fakeAPI serves canned pages keyed by the "after" cursor and records writes.
type fakeAPI struct {
	mu       sync.Mutex
	pages    map[string]shopify.ProductPage
	searches []shopify.ProductSearch
	sets     []setCall
	deletes  []string
	failSet  map[string]error
	failLoad error
	seq      int
}

func newFakeAPI(pages map[string]shopify.ProductPage) *fakeAPI {
	return &fakeAPI{pages: pages, failSet: map[string]error{}}
}

func (f *fakeAPI) SearchProducts(_ context.Context, search shopify.ProductSearch) (shopify.ProductPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, search)
	if f.failLoad != nil {
		return shopify.ProductPage{}, f.failLoad
	}
	return f.pages[search.After], nil
}

func (f *fakeAPI) SetProductMetafield(_ context.Context, productID string, input shopify.MetafieldInput) (shopify.Metafield, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failSet[productID]; err != nil {
		return shopify.Metafield{}, err
	}
	f.sets = append(f.sets, setCall{ProductID: productID, Input: input})
	f.seq++
	return shopify.Metafield{
		ID:        fmt.Sprintf("gid://shopify/Metafield/%d", 9000+f.seq),
		Namespace: input.Namespace,
		Key:       input.Key,
		Type:      input.Type,
		Value:     input.Value,
	}, nil
}

func (f *fakeAPI) DeleteMetafield(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return id, nil
}

func (f *fakeAPI) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sets) + len(f.deletes)
}

type toastLog struct {
	mu     sync.Mutex
	toasts []Toast
}

func (l *toastLog) Notify(t Toast) {
	l.mu.Lock()
	l.toasts = append(l.toasts, t)
	l.mu.Unlock()
}

func (l *toastLog) last() Toast {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.toasts) == 0 {
		return Toast{}
	}
	return l.toasts[len(l.toasts)-1]
}

var (
	recommendations = models.MetafieldDefinition{
		ID: "gid://shopify/MetafieldDefinition/1", Name: "Recommendations",
		Namespace: "custom", Key: "recommendations",
		Type: models.MetafieldDefinitionType{Name: "list.product_reference", ValueType: "LIST"},
	}
	gift = models.MetafieldDefinition{
		ID: "gid://shopify/MetafieldDefinition/2", Name: "Gift",
		Namespace: "custom", Key: "gift",
		Type: models.MetafieldDefinitionType{Name: "variant_reference"},
	}
	note = models.MetafieldDefinition{
		ID: "gid://shopify/MetafieldDefinition/3", Name: "Note",
		Namespace: "custom", Key: "note",
		Type: models.MetafieldDefinitionType{Name: "single_line_text_field"},
	}
)

func entity(id string) shopify.Entity {
	return shopify.Entity{ID: id, Title: "Title " + id, Images: []string{"https://cdn.example/" + id + ".png"}}
}

func sel(id string) Selection {
	return selectionFromEntity(entity(id))
}

func listMetafield(id string, refs ...string) shopify.Metafield {
	mf := shopify.Metafield{ID: id, Namespace: "custom", Key: "recommendations", Type: recommendations.Type.Name}
	value := "["
	for i, r := range refs {
		if i > 0 {
			value += ","
		}
		value += fmt.Sprintf("%q", r)
		mf.References = append(mf.References, entity(r))
	}
	mf.Value = value + "]"
	return mf
}

func giftMetafield(id, ref string) shopify.Metafield {
	e := entity(ref)
	return shopify.Metafield{ID: id, Namespace: "custom", Key: "gift", Type: gift.Type.Name, Value: ref, Reference: &e}
}

func noteMetafield(id, value string) shopify.Metafield {
	return shopify.Metafield{ID: id, Namespace: "custom", Key: "note", Type: note.Type.Name, Value: value}
}

func product(id string, mfs ...shopify.Metafield) shopify.ProductEdge {
	return shopify.ProductEdge{
		Cursor: "cursor-" + id,
		Node:   shopify.Product{ID: id, Title: "Product " + id, Metafields: mfs},
	}
}

func page(hasNext bool, edges ...shopify.ProductEdge) shopify.ProductPage {
	return shopify.ProductPage{Edges: edges, HasNextPage: hasNext}
}

func vipGifts(defs ...models.MetafieldDefinition) groups.Group {
	return groups.Group{ID: "group-vip", Name: "VIP Gifts", Definitions: defs}
}

func newTestEditor(t *testing.T, api API, tabs ...groups.Group) (*Editor, *toastLog) {
	t.Helper()
	toasts := &toastLog{}
	e := New(api, tabs, WithLogger(zaptest.NewLogger(t)), WithNotifier(toasts))
	if err := e.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return e, toasts
}
