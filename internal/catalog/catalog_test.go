package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

func TestCatalogValidate(t *testing.T) {
	require.NoError(t, Validate())
}

func TestLookup(t *testing.T) {
	for _, name := range types.StandardTableNames {
		t.Run(name, func(t *testing.T) {
			s, err := Lookup(name)
			require.NoError(t, err)
			assert.Equal(t, name, s.Table)
		})
	}

	_, err := Lookup("sqlite_master")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestAllFollowsMenuOrder(t *testing.T) {
	all := All()
	require.Len(t, all, len(types.StandardTableNames))
	for i, s := range all {
		assert.Equal(t, types.StandardTableNames[i], s.Table)
	}
	assert.Equal(t, types.StandardTableNames, Names())
}

func TestFieldConfiguration(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{
			name: "users mask the password column",
			check: func(t *testing.T) {
				s, _ := Lookup(types.TableUsers)
				c, ok := s.Column("password_hash")
				require.True(t, ok)
				assert.Equal(t, types.MaskedSecret, c.Kind)
				assert.Equal(t, []string{"username", "email", "password_hash"}, s.Required)
			},
		},
		{
			name: "products reference categories by name",
			check: func(t *testing.T) {
				s, _ := Lookup(types.TableProducts)
				c, ok := s.Column("category_id")
				require.True(t, ok)
				assert.Equal(t, types.ForeignKeyChoice, c.Kind)
				assert.Equal(t, "name", c.Ref.LabelColumn)
				assert.Equal(t, []string{"name", "price", "category_id"}, s.Required)
			},
		},
		{
			name: "order status is a closed set",
			check: func(t *testing.T) {
				s, _ := Lookup(types.TableOrders)
				c, _ := s.Column("status")
				assert.Equal(t, types.FixedChoice, c.Kind)
				assert.Equal(t, []string{"pending", "processing", "shipped", "delivered", "cancelled"}, c.Options)
			},
		},
		{
			name: "review rating is 1 through 5",
			check: func(t *testing.T) {
				s, _ := Lookup(types.TableProductReviews)
				c, _ := s.Column("rating")
				assert.Equal(t, types.NumericChoice, c.Kind)
				assert.Equal(t, []string{"1", "2", "3", "4", "5"}, c.Options)
			},
		},
		{
			name: "product tags use a composite key",
			check: func(t *testing.T) {
				s, _ := Lookup(types.TableProductTags)
				assert.Equal(t, []string{"product_id", "tag_id"}, s.PrimaryKey)
				assert.Empty(t, s.Searchable)
			},
		},
		{
			name: "server-assigned columns are read-only",
			check: func(t *testing.T) {
				for _, s := range All() {
					for _, c := range s.Editable() {
						assert.NotContains(t, []string{"created_at", "registration_date", "order_date"}, c.Name, s.Table)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}
