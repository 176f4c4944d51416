package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storeadmin/internal/catalog"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

func fakeHash(s string) string { return "hashed:" + s }

func TestSeedSample(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend)
	}{
		{
			name: "every table receives rows",
			check: func(t *testing.T, b *Backend) {
				for _, s := range catalog.All() {
					rows, err := b.List(context.Background(), s)
					require.NoError(t, err)
					assert.NotEmpty(t, rows, s.Table)
				}
			},
		},
		{
			name: "passwords are stored hashed",
			check: func(t *testing.T, b *Backend) {
				users := schemaFor(t, types.TableUsers)
				r, err := b.FetchOne(context.Background(), users, types.Key{int64(1)})
				require.NoError(t, err)
				assert.Equal(t, "hashed:alice-password", value(t, users, r, "password_hash"))
			},
		},
		{
			name: "references resolve to inserted rows",
			check: func(t *testing.T, b *Backend) {
				cats := schemaFor(t, types.TableCategories)
				rows, err := b.Search(context.Background(), cats, "Phones")
				require.NoError(t, err)
				require.Len(t, rows, 1)
				parent := value(t, cats, rows[0], "parent_category_id")
				label, err := b.LookupLabel(context.Background(), *cats.Columns[3].Ref, parent)
				require.NoError(t, err)
				assert.Equal(t, "Electronics", label)
			},
		},
		{
			name: "second run is a no-op",
			check: func(t *testing.T, b *Backend) {
				seeded, err := b.SeedSample(context.Background(), catalog.Lookup, fakeHash)
				require.NoError(t, err)
				assert.False(t, seeded)
				rows, err := b.List(context.Background(), schemaFor(t, types.TableUsers))
				require.NoError(t, err)
				assert.Len(t, rows, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t)
			seeded, err := b.SeedSample(context.Background(), catalog.Lookup, fakeHash)
			require.NoError(t, err)
			require.True(t, seeded)
			tt.check(t, b)
		})
	}
}
