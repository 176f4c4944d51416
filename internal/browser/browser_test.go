package browser

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storeadmin/internal/catalog"
	"github.com/mesh-intelligence/storeadmin/internal/codec"
	"github.com/mesh-intelligence/storeadmin/internal/form"
	"github.com/mesh-intelligence/storeadmin/internal/sqlite"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// countingStore records how often the browser reaches the store.
type countingStore struct {
	types.RecordStore
	deletes int
	labels  int
}

func (s *countingStore) Delete(ctx context.Context, es *types.EntitySchema, key types.Key) error {
	s.deletes++
	return s.RecordStore.Delete(ctx, es, key)
}

func (s *countingStore) LookupLabel(ctx context.Context, ref types.ForeignRef, key any) (string, error) {
	s.labels++
	return s.RecordStore.LookupLabel(ctx, ref, key)
}

func setup(t *testing.T) (*countingStore, form.Deps) {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Database: filepath.Join(t.TempDir(), "store.db")}))
	t.Cleanup(func() { b.Detach() })
	store := &countingStore{RecordStore: b}
	return store, form.Deps{Store: store, Codec: codec.New(store, codec.SHA256{})}
}

func open(t *testing.T, deps form.Deps, table string) *Browser {
	t.Helper()
	s, err := catalog.Lookup(table)
	require.NoError(t, err)
	br := New(deps, s)
	require.NoError(t, br.Render(context.Background()))
	return br
}

func add(t *testing.T, br *Browser, entries map[string]string) {
	t.Helper()
	ctx := context.Background()
	f, err := br.Add(ctx)
	require.NoError(t, err)
	for col, v := range entries {
		require.NoError(t, f.Set(col, v))
	}
	res, err := f.Save(ctx)
	require.NoError(t, err)
	require.NoError(t, br.Complete(ctx, res))
}

func yes(string) bool { return true }
func no(string) bool  { return false }

func TestRenderDisplaysCodecValues(t *testing.T) {
	_, deps := setup(t)
	users := open(t, deps, types.TableUsers)
	add(t, users, map[string]string{"username": "alice", "email": "a@x.com", "password_hash": "secret123"})

	page := users.Page()
	require.Equal(t, 1, page.Len())
	assert.Equal(t, "Users", page.Title)
	assert.Equal(t, "Username", page.Headers[1])
	row := page.Cells[0]
	assert.Equal(t, "alice", row[1])
	assert.Equal(t, codec.Placeholder, row[3])
	assert.NotContains(t, row, "secret123")
	assert.NotContains(t, row, codec.SHA256{}.Hash("secret123"))
	assert.Equal(t, "yes", row[8])
	assert.Equal(t, true, page.Values[0][8])
	assert.Equal(t, types.Key{int64(1)}, page.Keys[0])
}

func TestRenderJoinsForeignKeyLabels(t *testing.T) {
	store, deps := setup(t)
	cats := open(t, deps, types.TableCategories)
	add(t, cats, map[string]string{"name": "Electronics"})
	products := open(t, deps, types.TableProducts)
	for _, name := range []string{"Phone", "Tablet", "Watch"} {
		add(t, products, map[string]string{"category_id": "1 - Electronics", "name": name, "price": "10"})
	}

	store.labels = 0
	require.NoError(t, products.Render(context.Background()))
	page := products.Page()
	require.Equal(t, 3, page.Len())
	for _, row := range page.Cells {
		assert.Equal(t, "1 - Electronics", row[1])
	}
	assert.Equal(t, 1, store.labels, "labels memoised within a render")

	require.NoError(t, products.Render(context.Background()))
	assert.Equal(t, 2, store.labels, "labels re-read on the next render")
}

func TestApplySearch(t *testing.T) {
	_, deps := setup(t)
	tags := open(t, deps, types.TableTags)
	for _, name := range []string{"summer", "winter", "summit"} {
		add(t, tags, map[string]string{"name": name})
	}
	ctx := context.Background()

	require.NoError(t, tags.ApplySearch(ctx, "sum"))
	assert.Equal(t, 2, tags.Page().Len())
	assert.Equal(t, "sum", tags.Page().Term)

	require.NoError(t, tags.ApplySearch(ctx, "autumn"))
	assert.Equal(t, 0, tags.Page().Len())

	require.NoError(t, tags.ApplySearch(ctx, ""))
	assert.Equal(t, 3, tags.Page().Len(), "empty term lists everything")

	require.NoError(t, tags.ApplySearch(ctx, "  "))
	assert.Equal(t, 0, tags.Page().Len(), "whitespace is searched literally")
	assert.Equal(t, "  ", tags.Page().Term)

	require.NoError(t, tags.ApplySearch(ctx, "sum"))
	require.NoError(t, tags.Reset(ctx))
	assert.Equal(t, 3, tags.Page().Len())
	assert.Equal(t, "", tags.Page().Term)
}

func TestFailedSearchKeepsState(t *testing.T) {
	store, deps := setup(t)
	tags := open(t, deps, types.TableTags)
	add(t, tags, map[string]string{"name": "summer"})
	ctx := context.Background()
	key := tags.Page().Keys[0]
	require.NoError(t, tags.Select(key))

	backend, ok := store.RecordStore.(*sqlite.Backend)
	require.True(t, ok)
	require.NoError(t, backend.Detach())

	err := tags.ApplySearch(ctx, "sum")
	require.ErrorIs(t, err, types.ErrDetached)
	selected, ok := tags.Selection()
	assert.True(t, ok, "selection survives a failed search")
	assert.Equal(t, key, selected)
	assert.Equal(t, 1, tags.Page().Len())
	assert.Equal(t, "", tags.Page().Term)
}

func TestSelection(t *testing.T) {
	_, deps := setup(t)
	tags := open(t, deps, types.TableTags)
	add(t, tags, map[string]string{"name": "a"})
	add(t, tags, map[string]string{"name": "b"})
	ctx := context.Background()

	_, ok := tags.Selection()
	assert.False(t, ok)

	require.NoError(t, tags.Select(types.Key{int64(1)}))
	require.NoError(t, tags.Select(types.Key{int64(2)}))
	sel, ok := tags.Selection()
	require.True(t, ok)
	assert.Equal(t, types.Key{int64(2)}, sel, "selecting replaces")

	assert.ErrorIs(t, tags.Select(types.Key{int64(9)}), types.ErrNotFound)

	require.NoError(t, tags.ApplySearch(ctx, "a"))
	_, ok = tags.Selection()
	assert.False(t, ok, "redraw invalidates selection")
	assert.ErrorIs(t, tags.Select(types.Key{int64(2)}), types.ErrNotFound, "row not on the page")
}

func TestEdit(t *testing.T) {
	_, deps := setup(t)
	tags := open(t, deps, types.TableTags)
	add(t, tags, map[string]string{"name": "sale"})
	ctx := context.Background()

	_, err := tags.Edit(ctx)
	assert.ErrorIs(t, err, types.ErrNoSelection)

	require.NoError(t, tags.Select(types.Key{int64(1)}))
	f, err := tags.Edit(ctx)
	require.NoError(t, err)
	require.NoError(t, f.Set("name", "clearance"))
	res, err := f.Save(ctx)
	require.NoError(t, err)
	require.NoError(t, tags.Complete(ctx, res))

	assert.Equal(t, "clearance", tags.Page().Cells[0][1])
	_, ok := tags.Selection()
	assert.False(t, ok, "selection cleared after edit")
}

func TestCompleteCancelledChangesNothing(t *testing.T) {
	_, deps := setup(t)
	tags := open(t, deps, types.TableTags)
	add(t, tags, map[string]string{"name": "sale"})
	ctx := context.Background()
	require.NoError(t, tags.Select(types.Key{int64(1)}))

	f, err := tags.Edit(ctx)
	require.NoError(t, err)
	require.NoError(t, tags.Complete(ctx, f.Cancel()))

	sel, ok := tags.Selection()
	assert.True(t, ok)
	assert.Equal(t, types.Key{int64(1)}, sel)
}

func TestEditDeletedRow(t *testing.T) {
	store, deps := setup(t)
	tags := open(t, deps, types.TableTags)
	add(t, tags, map[string]string{"name": "sale"})
	ctx := context.Background()
	require.NoError(t, tags.Select(types.Key{int64(1)}))
	require.NoError(t, store.RecordStore.Delete(ctx, tags.Schema(), types.Key{int64(1)}))

	_, err := tags.Edit(ctx)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, 0, tags.Page().Len())
}

func TestRemove(t *testing.T) {
	store, deps := setup(t)
	tags := open(t, deps, types.TableTags)
	add(t, tags, map[string]string{"name": "a"})
	add(t, tags, map[string]string{"name": "b"})
	ctx := context.Background()

	t.Run("needs a selection", func(t *testing.T) {
		assert.ErrorIs(t, tags.Remove(ctx, yes), types.ErrNoSelection)
		assert.Equal(t, 0, store.deletes)
	})

	t.Run("declined prompt makes no store call", func(t *testing.T) {
		require.NoError(t, tags.Select(types.Key{int64(1)}))
		var prompt string
		require.NoError(t, tags.Remove(ctx, func(p string) bool { prompt = p; return no(p) }))
		assert.Equal(t, "Delete Tags 1?", prompt)
		assert.Equal(t, 0, store.deletes)
		assert.Equal(t, 2, tags.Page().Len())
	})

	t.Run("confirmed delete re-renders", func(t *testing.T) {
		require.NoError(t, tags.Select(types.Key{int64(1)}))
		require.NoError(t, tags.Remove(ctx, yes))
		assert.Equal(t, 1, store.deletes)
		assert.Equal(t, []types.Key{{int64(2)}}, tags.Page().Keys)
		_, ok := tags.Selection()
		assert.False(t, ok)
	})

	t.Run("stale selection reports not found", func(t *testing.T) {
		require.NoError(t, tags.Select(types.Key{int64(2)}))
		require.NoError(t, store.RecordStore.Delete(ctx, tags.Schema(), types.Key{int64(2)}))
		err := tags.Remove(ctx, yes)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.Equal(t, 0, tags.Page().Len())
		_, ok := tags.Selection()
		assert.False(t, ok)
	})
}

func TestRemoveConstraintViolationKeepsSelection(t *testing.T) {
	_, deps := setup(t)
	cats := open(t, deps, types.TableCategories)
	add(t, cats, map[string]string{"name": "Electronics"})
	products := open(t, deps, types.TableProducts)
	add(t, products, map[string]string{"category_id": "1", "name": "Phone", "price": "1"})
	ctx := context.Background()

	require.NoError(t, cats.Render(ctx))
	require.NoError(t, cats.Select(types.Key{int64(1)}))
	err := cats.Remove(ctx, yes)
	assert.ErrorIs(t, err, types.ErrConstraintViolation)
	_, ok := cats.Selection()
	assert.True(t, ok)
}

func TestSearchUnsearchableTable(t *testing.T) {
	_, deps := setup(t)
	items := open(t, deps, types.TableOrderItems)
	assert.False(t, items.Searchable())
	assert.ErrorIs(t, items.ApplySearch(context.Background(), "x"), types.ErrNotSearchable)
}
