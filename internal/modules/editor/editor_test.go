package editor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/modules/groups"
	"github.com/mx-space/metafields/internal/pkg/shopify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectionsOf(t *testing.T, e *Editor, productID string) []Selection {
	t.Helper()
	for _, p := range e.View().Products {
		if p.ID == productID {
			return p.Selections
		}
	}
	t.Fatalf("product %s not in view", productID)
	return nil
}

func TestSubmitSendsOnlyChangedListRows(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false,
			product("A", listMetafield("mf-A", "v1", "v2")),
			product("B", listMetafield("mf-B", "v9")),
		),
	})
	e, toasts := newTestEditor(t, api, vipGifts(recommendations))

	require.NoError(t, e.Detach("A", "v1"))
	require.NoError(t, e.Attach("A", PickerResult{Selection: []Selection{sel("v3")}}))
	assert.Equal(t, 1, e.PendingChanges())

	report, err := e.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Empty(t, report.Failures)

	want := []setCall{{
		ProductID: "A",
		Input: shopify.MetafieldInput{
			Namespace: "custom",
			Key:       "recommendations",
			Value:     `["v2","v3"]`,
			Type:      "list.product_reference",
		},
	}}
	if diff := cmp.Diff(want, api.sets); diff != "" {
		t.Fatalf("set calls mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, api.deletes)
	assert.False(t, toasts.last().Error)

	report, err = e.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Calls())
	assert.Equal(t, 1, api.writes())
	assert.Equal(t, "No changes to save", toasts.last().Message)
}

func TestSubmittedListReloadsUnchanged(t *testing.T) {
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false, product("A", listMetafield("mf-A", "v1"))),
	})
	e, _ := newTestEditor(t, api, vipGifts(recommendations))
	require.NoError(t, e.Attach("A", PickerResult{Selection: []Selection{sel("v4"), sel("v2")}}))
	require.NoError(t, e.Detach("A", "v1"))
	submitted := selectionsOf(t, e, "A")

	_, err := e.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, api.sets, 1)

	var ids []string
	require.NoError(t, json.Unmarshal([]byte(api.sets[0].Input.Value), &ids))
	reloaded, _ := newTestEditor(t, newFakeAPI(map[string]shopify.ProductPage{
		"": page(false, product("A", listMetafield("mf-A", ids...))),
	}), vipGifts(recommendations))

	assert.ElementsMatch(t, submitted, selectionsOf(t, reloaded, "A"))
	assert.Zero(t, reloaded.PendingChanges())
}

func TestDetachSingleReferenceDeletesInstance(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false, product("A", giftMetafield("mf-gift-A", "gid://shopify/ProductVariant/1"))),
	})
	e, _ := newTestEditor(t, api, vipGifts(gift))

	require.NoError(t, e.Detach("A", "gid://shopify/ProductVariant/1"))
	report, err := e.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, []string{"mf-gift-A"}, api.deletes)
	assert.Empty(t, api.sets)

	report, err = e.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Calls())
}

func TestClearingListSendsEmptyArray(t *testing.T) {
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false, product("A", listMetafield("mf-A", "v1"))),
	})
	e, _ := newTestEditor(t, api, vipGifts(recommendations))

	require.NoError(t, e.Attach("A", PickerResult{Selection: []Selection{}}))
	assert.Empty(t, selectionsOf(t, e, "A"))

	report, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Cleared)
	require.Len(t, api.sets, 1)
	assert.Equal(t, "[]", api.sets[0].Input.Value)
	assert.Empty(t, api.deletes)
}

func TestAttach(t *testing.T) {
	t.Run("single reference keeps first pick", func(t *testing.T) {
		api := newFakeAPI(map[string]shopify.ProductPage{"": page(false, product("A"))})
		e, _ := newTestEditor(t, api, vipGifts(gift))

		require.NoError(t, e.Attach("A", PickerResult{Selection: []Selection{sel("v5"), sel("v6")}}))
		assert.Equal(t, []Selection{sel("v5")}, selectionsOf(t, e, "A"))

		_, err := e.Submit(context.Background())
		require.NoError(t, err)
		require.Len(t, api.sets, 1)
		assert.Equal(t, "v5", api.sets[0].Input.Value)
		assert.Equal(t, "variant_reference", api.sets[0].Input.Type)
	})

	t.Run("list takes the union", func(t *testing.T) {
		api := newFakeAPI(map[string]shopify.ProductPage{
			"": page(false, product("A", listMetafield("mf-A", "v1", "v2"))),
		})
		e, _ := newTestEditor(t, api, vipGifts(recommendations))

		require.NoError(t, e.Attach("A", PickerResult{Selection: []Selection{sel("v2"), sel("v3")}}))
		assert.Equal(t, []Selection{sel("v1"), sel("v2"), sel("v3")}, selectionsOf(t, e, "A"))
	})

	t.Run("cancelled pick changes nothing", func(t *testing.T) {
		api := newFakeAPI(map[string]shopify.ProductPage{
			"": page(false, product("A", listMetafield("mf-A", "v1"))),
		})
		e, _ := newTestEditor(t, api, vipGifts(recommendations))

		require.NoError(t, e.Attach("A", PickerResult{Cancelled: true}))
		assert.Equal(t, []Selection{sel("v1")}, selectionsOf(t, e, "A"))
		assert.Equal(t, 0, e.PendingChanges())
	})

	t.Run("re-adding the same selection is not a change", func(t *testing.T) {
		api := newFakeAPI(map[string]shopify.ProductPage{
			"": page(false, product("A", listMetafield("mf-A", "v1", "v2"))),
		})
		e, _ := newTestEditor(t, api, vipGifts(recommendations))

		require.NoError(t, e.Detach("A", "v2"))
		require.NoError(t, e.Attach("A", PickerResult{Selection: []Selection{sel("v2")}}))
		assert.Equal(t, 0, e.PendingChanges())
	})

	t.Run("text metafield rejects attach", func(t *testing.T) {
		api := newFakeAPI(map[string]shopify.ProductPage{"": page(false, product("A"))})
		e, _ := newTestEditor(t, api, vipGifts(note))
		assert.ErrorIs(t, e.Attach("A", PickerResult{Selection: []Selection{sel("v1")}}), ErrNotReference)
		assert.ErrorIs(t, e.Detach("A", "v1"), ErrNotReference)
	})
}

func TestPickerRequest(t *testing.T) {
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false, product("A", listMetafield("mf-A", "v1", "v2"))),
	})
	e, _ := newTestEditor(t, api, vipGifts(recommendations, gift))

	req, err := e.PickerRequestFor("A")
	require.NoError(t, err)
	assert.Equal(t, PickerRequest{Type: PickerProduct, Multiple: true, SelectionIDs: []string{"v1", "v2"}}, req)

	require.NoError(t, e.SelectMetafield("gift"))
	req, err = e.PickerRequestFor("A")
	require.NoError(t, err)
	assert.Equal(t, PickerRequest{Type: PickerVariant, Multiple: false, SelectionIDs: []string{}}, req)

	_, err = e.PickerRequestFor("")
	assert.ErrorIs(t, err, ErrProductRequired)
}

func TestTextMetafields(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false,
			product("A", noteMetafield("mf-note-A", "hello")),
			product("B"),
		),
	})
	e, toasts := newTestEditor(t, api, vipGifts(note))

	view := e.View()
	require.Len(t, view.Products, 2)
	require.NotNil(t, view.Products[0].Text)
	assert.Equal(t, "hello", *view.Products[0].Text)
	assert.Equal(t, SaveButton{Disabled: true}, view.Products[0].SaveButton)
	assert.Equal(t, "mf-note-A", view.Products[0].InstanceID)

	t.Run("empty buffer deletes the instance", func(t *testing.T) {
		require.NoError(t, e.EditText("A", ""))
		assert.Equal(t, SaveButton{Disabled: false}, e.View().Products[0].SaveButton)

		require.NoError(t, e.SaveText(ctx, "A"))
		assert.Equal(t, []string{"mf-note-A"}, api.deletes)
		assert.Empty(t, api.sets)
		assert.Equal(t, SaveButton{Disabled: true}, e.View().Products[0].SaveButton)
		assert.Equal(t, "", e.View().Products[0].InstanceID)

		require.NoError(t, e.SaveText(ctx, "A"))
		assert.Len(t, api.deletes, 1)
	})

	t.Run("value is written with the definition type", func(t *testing.T) {
		require.NoError(t, e.EditText("B", "gift wrap"))
		require.NoError(t, e.SaveText(ctx, "B"))

		want := []setCall{{
			ProductID: "B",
			Input: shopify.MetafieldInput{
				Namespace: "custom", Key: "note", Value: "gift wrap", Type: "single_line_text_field",
			},
		}}
		if diff := cmp.Diff(want, api.sets); diff != "" {
			t.Fatalf("set calls mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, "gid://shopify/Metafield/9001", e.View().Products[1].InstanceID)
		assert.Equal(t, "Metafield saved", toasts.last().Message)
	})

	t.Run("failed save re-enables the button", func(t *testing.T) {
		api.failSet["B"] = errors.New("userErrors: value is invalid")
		require.NoError(t, e.EditText("B", "again"))
		assert.Error(t, e.SaveText(ctx, "B"))
		assert.Equal(t, SaveButton{Disabled: false}, e.View().Products[1].SaveButton)
		assert.True(t, toasts.last().Error)
	})

	t.Run("reload keeps unsaved buffers", func(t *testing.T) {
		require.NoError(t, e.Reload(ctx))
		assert.Equal(t, "again", *e.View().Products[1].Text)
	})

	_, err := e.Submit(ctx)
	assert.ErrorIs(t, err, ErrNotReference)
}

func TestWhitespaceTextIsWritten(t *testing.T) {
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false, product("A", noteMetafield("mf-note-A", "hello"))),
	})
	e, _ := newTestEditor(t, api, vipGifts(note))

	require.NoError(t, e.EditText("A", "   "))
	require.NoError(t, e.SaveText(context.Background(), "A"))
	assert.Empty(t, api.deletes)
	require.Len(t, api.sets, 1)
	assert.Equal(t, "   ", api.sets[0].Input.Value)
}

func TestKeysAreScopedByNamespace(t *testing.T) {
	ctx := context.Background()
	otherNote := note
	otherNote.ID = "gid://shopify/MetafieldDefinition/30"
	otherNote.Namespace = "other"
	otherRecs := recommendations
	otherRecs.ID = "gid://shopify/MetafieldDefinition/10"
	otherRecs.Namespace = "other"

	t.Run("text in another tab", func(t *testing.T) {
		api := newFakeAPI(map[string]shopify.ProductPage{
			"": page(false, product("A", noteMetafield("mf-custom-note-A", "hello"))),
		})
		e, _ := newTestEditor(t, api,
			groups.Group{ID: "g1", Name: "Custom", Definitions: []models.MetafieldDefinition{note}},
			groups.Group{ID: "g2", Name: "Other", Definitions: []models.MetafieldDefinition{otherNote}})

		require.NoError(t, e.SwitchTab(ctx, 1))
		view := e.View()
		assert.Equal(t, "other.note", view.ActiveKey)
		require.NotNil(t, view.Products[0].Text)
		assert.Equal(t, "", *view.Products[0].Text)
		assert.Equal(t, "", view.Products[0].InstanceID)

		require.NoError(t, e.EditText("A", ""))
		require.NoError(t, e.SaveText(ctx, "A"))
		assert.Empty(t, api.deletes)

		require.NoError(t, e.SwitchTab(ctx, 0))
		assert.Equal(t, "hello", *e.View().Products[0].Text)
		assert.Equal(t, "mf-custom-note-A", e.View().Products[0].InstanceID)
	})

	t.Run("lists in one group", func(t *testing.T) {
		api := newFakeAPI(map[string]shopify.ProductPage{
			"": page(false, product("A", listMetafield("mf-A", "v1"))),
		})
		e, _ := newTestEditor(t, api,
			groups.Group{ID: "g1", Name: "Both", Definitions: []models.MetafieldDefinition{recommendations, otherRecs}})

		assert.ErrorIs(t, e.SelectMetafield("recommendations"), ErrUnknownMetafield)
		require.NoError(t, e.SelectMetafield("other.recommendations"))
		assert.Empty(t, selectionsOf(t, e, "A"))

		require.NoError(t, e.Attach("A", PickerResult{Selection: []Selection{sel("v2")}}))
		report, err := e.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, "other.recommendations", report.Key)
		want := []setCall{{
			ProductID: "A",
			Input: shopify.MetafieldInput{
				Namespace: "other", Key: "recommendations", Value: `["v2"]`, Type: "list.product_reference",
			},
		}}
		if diff := cmp.Diff(want, api.sets); diff != "" {
			t.Fatalf("set calls mismatch (-want +got):\n%s", diff)
		}

		require.NoError(t, e.SelectMetafield("custom.recommendations"))
		assert.Equal(t, []Selection{sel("v1")}, selectionsOf(t, e, "A"))
		assert.Zero(t, e.PendingChanges())
	})
}

func TestEditTextRejectsReferenceKey(t *testing.T) {
	api := newFakeAPI(map[string]shopify.ProductPage{"": page(false, product("A"))})
	e, _ := newTestEditor(t, api, vipGifts(recommendations))
	assert.ErrorIs(t, e.EditText("A", "x"), ErrNotText)
}

func TestPagination(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(map[string]shopify.ProductPage{
		"":         page(true, product("A"), product("B")),
		"cursor-B": page(false, product("C")),
	})
	e, _ := newTestEditor(t, api, vipGifts(recommendations, note))

	require.Len(t, api.searches, 1)
	want := shopify.ProductSearch{
		First:         DefaultPageSize,
		MetafieldKeys: []string{"custom.recommendations", "custom.note"},
	}
	if diff := cmp.Diff(want, api.searches[0]); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, e.View().HasNextPage)

	require.NoError(t, e.LoadNextPage(ctx))
	assert.Equal(t, "cursor-B", api.searches[1].After)
	view := e.View()
	assert.Len(t, view.Products, 3)
	assert.False(t, view.HasNextPage)

	require.NoError(t, e.LoadNextPage(ctx))
	assert.Len(t, api.searches, 2)

	require.NoError(t, e.Search(ctx, " gift "))
	last := api.searches[len(api.searches)-1]
	assert.Equal(t, "title:*gift*", last.Query)
	assert.Empty(t, last.After)
	assert.Equal(t, " gift ", e.View().Search)
}

func TestLoadFailureToastsAndKeepsState(t *testing.T) {
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false, product("A", listMetafield("mf-A", "v1"))),
	})
	e, toasts := newTestEditor(t, api, vipGifts(recommendations))
	require.NoError(t, e.Detach("A", "v1"))

	api.failLoad = errors.New("throttled")
	assert.Error(t, e.Reload(context.Background()))
	assert.True(t, toasts.last().Error)
	assert.Equal(t, 1, e.PendingChanges())
}

func TestUnparseableListIsEmpty(t *testing.T) {
	mf := listMetafield("mf-A", "v1")
	mf.Value = "{not json"
	api := newFakeAPI(map[string]shopify.ProductPage{"": page(false, product("A", mf))})
	e, _ := newTestEditor(t, api, vipGifts(recommendations))

	assert.Empty(t, selectionsOf(t, e, "A"))
	report, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Calls())
}

func TestListIDsWithoutReferencesKeepPlaceholder(t *testing.T) {
	mf := listMetafield("mf-A", "v1")
	mf.Value = `["v1","v7","v1"]`
	api := newFakeAPI(map[string]shopify.ProductPage{"": page(false, product("A", mf))})
	e, _ := newTestEditor(t, api, vipGifts(recommendations))

	assert.Equal(t, []Selection{sel("v1"), {ID: "v7", Title: "Product"}}, selectionsOf(t, e, "A"))
}

func TestTabSwitchRetainsEdits(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false, product("A", listMetafield("mf-A", "v1", "v2"), giftMetafield("mf-gift-A", "g1"))),
	})
	other := groups.Group{ID: "group-other", Name: "Other", Definitions: []models.MetafieldDefinition{gift}}
	e, _ := newTestEditor(t, api, vipGifts(recommendations), other)

	require.NoError(t, e.Detach("A", "v1"))
	require.NoError(t, e.SwitchTab(ctx, 1))
	assert.Equal(t, "custom.gift", e.View().ActiveKey)
	assert.Equal(t, []Selection{sel("g1")}, selectionsOf(t, e, "A"))

	require.NoError(t, e.SwitchTab(ctx, 0))
	assert.Equal(t, []Selection{sel("v2")}, selectionsOf(t, e, "A"))
	assert.Equal(t, 1, e.PendingChanges())

	assert.ErrorIs(t, e.SwitchTab(ctx, 2), ErrTabOutOfRange)
	assert.ErrorIs(t, e.SelectMetafield("missing"), ErrUnknownMetafield)
}

func TestRemoveGroupShiftsLaterTabs(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false, product("A", listMetafield("mf-A", "v1", "v2"))),
	})
	tabs := []groups.Group{
		{ID: "g0", Name: "First", Definitions: []models.MetafieldDefinition{recommendations}},
		{ID: "g1", Name: "Second", Definitions: []models.MetafieldDefinition{recommendations}},
		{ID: "g2", Name: "Third", Definitions: []models.MetafieldDefinition{recommendations}},
	}
	e, _ := newTestEditor(t, api, tabs...)

	require.NoError(t, e.SwitchTab(ctx, 2))
	require.NoError(t, e.Detach("A", "v1"))

	e.RemoveGroup("g1")
	view := e.View()
	assert.Equal(t, 0, view.ActiveTab)
	assert.Empty(t, view.Products)
	require.Len(t, view.Tabs, 2)
	assert.Equal(t, "Third", view.Tabs[1].Name)

	require.NoError(t, e.EnsureLoaded(ctx))
	assert.Equal(t, []Selection{sel("v1"), sel("v2")}, selectionsOf(t, e, "A"))

	require.NoError(t, e.SwitchTab(ctx, 1))
	assert.Equal(t, []Selection{sel("v2")}, selectionsOf(t, e, "A"))
}

func TestReplaceDefinitionsAndAddGroup(t *testing.T) {
	api := newFakeAPI(map[string]shopify.ProductPage{"": page(false, product("A"))})
	e, _ := newTestEditor(t, api)
	assert.Empty(t, e.View().Tabs)
	assert.ErrorIs(t, e.SwitchTab(context.Background(), 0), ErrNoGroups)

	e.AddGroup(vipGifts())
	e.AddGroup(vipGifts())
	require.Len(t, e.View().Tabs, 1)
	assert.Equal(t, "", e.View().ActiveKey)

	e.ReplaceDefinitions("group-vip", []models.MetafieldDefinition{note, gift})
	view := e.View()
	assert.Equal(t, "custom.note", view.ActiveKey)
	assert.Equal(t, 2, view.Tabs[0].Count)
}

func TestSubmitPartialFailure(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(map[string]shopify.ProductPage{
		"": page(false,
			product("A", listMetafield("mf-A", "v1")),
			product("B", listMetafield("mf-B", "v1")),
		),
	})
	e, toasts := newTestEditor(t, api, vipGifts(recommendations))
	require.NoError(t, e.Attach("A", PickerResult{Selection: []Selection{sel("v2")}}))
	require.NoError(t, e.Attach("B", PickerResult{Selection: []Selection{sel("v2")}}))

	api.failSet["A"] = errors.New("userErrors: value is invalid")
	report, err := e.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "A", report.Failures[0].ProductID)
	assert.True(t, toasts.last().Error)
	assert.Equal(t, 1, e.PendingChanges())

	delete(api.failSet, "A")
	report, err = e.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	require.Len(t, api.sets, 2)
	assert.Equal(t, "B", api.sets[0].ProductID)
	assert.Equal(t, "A", api.sets[1].ProductID)
}
