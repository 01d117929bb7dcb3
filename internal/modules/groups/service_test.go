package groups

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mx-space/metafields/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeStore counts writes so tests can assert nothing was persisted.
type fakeStore struct {
	rows    []models.MetafieldGroupModel
	creates int
	updates int
	deletes int
	listErr error
}

func (s *fakeStore) List(context.Context) ([]models.MetafieldGroupModel, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]models.MetafieldGroupModel(nil), s.rows...), nil
}

func (s *fakeStore) Create(_ context.Context, g *models.MetafieldGroupModel) error {
	s.creates++
	g.ID = uuid.NewString()
	s.rows = append(s.rows, *g)
	return nil
}

func (s *fakeStore) UpdateMetafields(_ context.Context, id, metafields string) (*models.MetafieldGroupModel, error) {
	s.updates++
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Metafields = metafields
			row := s.rows[i]
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.deletes++
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type recordingListener struct {
	created  []string
	deleted  []string
	replaced map[string]int
}

func (l *recordingListener) GroupCreated(g Group)   { l.created = append(l.created, g.Name) }
func (l *recordingListener) GroupDeleted(id string) { l.deleted = append(l.deleted, id) }
func (l *recordingListener) DefinitionsReplaced(id string, defs []models.MetafieldDefinition) {
	if l.replaced == nil {
		l.replaced = map[string]int{}
	}
	l.replaced[id] = len(defs)
}

func TestRegistry_CreateRejectsCaseInsensitiveDuplicate(t *testing.T) {
	store := &fakeStore{rows: []models.MetafieldGroupModel{{Base: models.Base{ID: "g1"}, Name: "upsell", Metafields: "[]"}}}
	reg := NewRegistry(store, WithLogger(zaptest.NewLogger(t)))

	_, err := reg.Create(context.Background(), "Upsell")
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Zero(t, store.creates, "duplicate must not reach the store")

	_, err = reg.Create(context.Background(), "  UPSELL ")
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Zero(t, store.creates)
}

func TestRegistry_CreateTrimsAndStartsEmpty(t *testing.T) {
	store := &fakeStore{}
	reg := NewRegistry(store)
	l := &recordingListener{}
	reg.Subscribe(l)

	g, err := reg.Create(context.Background(), "  VIP Gifts ")
	require.NoError(t, err)
	assert.Equal(t, "VIP Gifts", g.Name)
	assert.Empty(t, g.Definitions)
	assert.NotNil(t, g.Definitions)
	assert.Equal(t, "[]", store.rows[0].Metafields)
	assert.Equal(t, []string{"VIP Gifts"}, l.created)

	_, err = reg.Create(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.Equal(t, 1, store.creates)
}

func TestRegistry_CreatePropagatesListError(t *testing.T) {
	store := &fakeStore{listErr: errors.New("db down")}
	reg := NewRegistry(store)

	_, err := reg.Create(context.Background(), "Upsell")
	require.Error(t, err)
	assert.Zero(t, store.creates)
}

func TestRegistry_SetDefinitionsReplacesWholesale(t *testing.T) {
	store := &fakeStore{rows: []models.MetafieldGroupModel{{
		Base:       models.Base{ID: "g1"},
		Name:       "VIP Gifts",
		Metafields: `[{"id":"d0","name":"Old","namespace":"custom","key":"old","type":{"name":"single_line_text_field"}}]`,
	}}}
	reg := NewRegistry(store)
	l := &recordingListener{}
	reg.Subscribe(l)

	defs := []models.MetafieldDefinition{
		{ID: "d1", Name: "Gifts", Namespace: "custom", Key: "recommendations", Type: models.MetafieldDefinitionType{Name: "list.product_reference"}},
	}
	g, err := reg.SetDefinitions(context.Background(), "g1", defs)
	require.NoError(t, err)
	assert.Equal(t, defs, g.Definitions)
	assert.Equal(t, 1, l.replaced["g1"])

	listed, err := reg.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, defs, listed[0].Definitions)

	_, err = reg.SetDefinitions(context.Background(), "missing", defs)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_DeleteNotifiesListeners(t *testing.T) {
	store := &fakeStore{rows: []models.MetafieldGroupModel{{Base: models.Base{ID: "g1"}, Name: "A"}}}
	reg := NewRegistry(store)
	l := &recordingListener{}
	reg.Subscribe(l)

	require.NoError(t, reg.Delete(context.Background(), "g1"))
	assert.Equal(t, []string{"g1"}, l.deleted)

	assert.ErrorIs(t, reg.Delete(context.Background(), "g1"), ErrNotFound)
	assert.Len(t, l.deleted, 1)
}

func TestRegistry_ListDegradesMalformedDefinitions(t *testing.T) {
	store := &fakeStore{rows: []models.MetafieldGroupModel{{Base: models.Base{ID: "g1"}, Name: "Broken", Metafields: "{oops"}}}
	reg := NewRegistry(store, WithLogger(zaptest.NewLogger(t)))

	groups, err := reg.List(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Definitions)
}

func TestHasName(t *testing.T) {
	groups := []Group{{Name: "Upsell"}, {Name: "VIP Gifts"}}
	assert.True(t, HasName(groups, "upsell"))
	assert.True(t, HasName(groups, "vip gifts "))
	assert.False(t, HasName(groups, "Cross-sell"))
}
