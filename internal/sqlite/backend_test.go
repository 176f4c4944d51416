package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mesh-intelligence/storeadmin/internal/catalog"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// newTestBackend attaches a backend to a fresh database under t.TempDir.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Database: filepath.Join(t.TempDir(), "store.db")}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func schemaFor(t *testing.T, table string) *types.EntitySchema {
	t.Helper()
	s, err := catalog.Lookup(table)
	require.NoError(t, err)
	return s
}

func TestBackend_Attach(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "store.db")
	b := NewBackend()
	config := types.Config{Database: dbPath}

	require.NoError(t, b.Attach(config))
	defer b.Detach()

	_, err := os.Stat(dbPath)
	require.NoError(t, err, "database file not created")
	assert.Equal(t, dbPath, b.Path())

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestBackend_AttachRejectsInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrDatabaseEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Database: "x.db", LogLevel: "loud"}), types.ErrLogLevelUnknown)
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Database: filepath.Join(t.TempDir(), "store.db")}))

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "second Detach should not error")
	assert.Equal(t, "", b.Path())

	ctx := context.Background()
	_, err := b.List(ctx, schemaFor(t, types.TableUsers))
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.Insert(ctx, schemaFor(t, types.TableTags), []types.ColumnValue{{Column: "name", Value: "x"}})
	assert.ErrorIs(t, err, types.ErrDetached)
	assert.ErrorIs(t, b.Delete(ctx, schemaFor(t, types.TableTags), types.Key{int64(1)}), types.ErrDetached)
}

func TestBackend_DetachReleasesGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Database: filepath.Join(t.TempDir(), "store.db")}))
	_, err := b.Insert(ctx, schemaFor(t, types.TableTags), []types.ColumnValue{{Column: "name", Value: "sale"}})
	require.NoError(t, err)
	_, err = b.Search(ctx, schemaFor(t, types.TableTags), "sa")
	require.NoError(t, err)
	require.NoError(t, b.Detach())
}

func TestBackend_ReattachPreservesData(t *testing.T) {
	ctx := context.Background()
	config := types.Config{Database: filepath.Join(t.TempDir(), "store.db")}
	tags := schemaFor(t, types.TableTags)

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	_, err := b.Insert(ctx, tags, []types.ColumnValue{{Column: "name", Value: "sale"}})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	defer b2.Detach()
	rows, err := b2.List(ctx, tags)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sale", rows[0][1])
}

func TestBootstrapCreatesAllTables(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	for _, s := range catalog.All() {
		rows, err := b.List(ctx, s)
		require.NoError(t, err, s.Table)
		assert.Empty(t, rows, s.Table)
	}
}

func TestDSNEnablesForeignKeys(t *testing.T) {
	d := dsn("/tmp/x.db")
	assert.Contains(t, d, "_pragma=foreign_keys(1)")
	assert.Contains(t, d, "_pragma=busy_timeout(5000)")
	assert.Equal(t, "/tmp/x.db?", d[:len("/tmp/x.db?")])
}
