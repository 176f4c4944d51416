package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// sampleRow is one row of the sample data set. Values that name another
// sample row use a sampleRef and are resolved to that row's key on insert.
type sampleRow struct {
	name   string
	table  string
	values []types.ColumnValue
}

// sampleRef points at the row inserted under name.
type sampleRef string

// secret marks a plaintext password that is hashed before insert.
type secret string

var sampleRows = []sampleRow{
	{"alice", types.TableUsers, []types.ColumnValue{
		{Column: "username", Value: "alice"},
		{Column: "email", Value: "alice@example.com"},
		{Column: "password_hash", Value: secret("alice-password")},
		{Column: "first_name", Value: "Alice"},
		{Column: "last_name", Value: "Martin"},
	}},
	{"bob", types.TableUsers, []types.ColumnValue{
		{Column: "username", Value: "bob"},
		{Column: "email", Value: "bob@example.com"},
		{Column: "password_hash", Value: secret("bob-password")},
		{Column: "first_name", Value: "Bob"},
	}},
	{"electronics", types.TableCategories, []types.ColumnValue{
		{Column: "name", Value: "Electronics"},
		{Column: "description", Value: "Devices and accessories"},
	}},
	{"phones", types.TableCategories, []types.ColumnValue{
		{Column: "name", Value: "Phones"},
		{Column: "parent_category_id", Value: sampleRef("electronics")},
	}},
	{"books", types.TableCategories, []types.ColumnValue{
		{Column: "name", Value: "Books"},
	}},
	{"phone", types.TableProducts, []types.ColumnValue{
		{Column: "category_id", Value: sampleRef("phones")},
		{Column: "name", Value: "Phone"},
		{Column: "description", Value: "6.1 inch smartphone"},
		{Column: "price", Value: 599.99},
		{Column: "stock_quantity", Value: int64(10)},
	}},
	{"charger", types.TableProducts, []types.ColumnValue{
		{Column: "category_id", Value: sampleRef("electronics")},
		{Column: "name", Value: "USB-C charger"},
		{Column: "price", Value: 19.5},
		{Column: "stock_quantity", Value: int64(120)},
	}},
	{"novel", types.TableProducts, []types.ColumnValue{
		{Column: "category_id", Value: sampleRef("books")},
		{Column: "name", Value: "Paperback novel"},
		{Column: "price", Value: 12.0},
		{Column: "stock_quantity", Value: int64(40)},
	}},
	{"order1", types.TableOrders, []types.ColumnValue{
		{Column: "user_id", Value: sampleRef("alice")},
		{Column: "status", Value: "shipped"},
		{Column: "total_amount", Value: 619.49},
		{Column: "shipping_address", Value: "12 Market Street"},
		{Column: "payment_method", Value: "card"},
		{Column: "payment_status", Value: "paid"},
	}},
	{"item1", types.TableOrderItems, []types.ColumnValue{
		{Column: "order_id", Value: sampleRef("order1")},
		{Column: "product_id", Value: sampleRef("phone")},
		{Column: "quantity", Value: int64(1)},
		{Column: "unit_price", Value: 599.99},
	}},
	{"item2", types.TableOrderItems, []types.ColumnValue{
		{Column: "order_id", Value: sampleRef("order1")},
		{Column: "product_id", Value: sampleRef("charger")},
		{Column: "quantity", Value: int64(1)},
		{Column: "unit_price", Value: 19.5},
	}},
	{"mobile", types.TableTags, []types.ColumnValue{
		{Column: "name", Value: "mobile"},
	}},
	{"gift", types.TableTags, []types.ColumnValue{
		{Column: "name", Value: "gift"},
		{Column: "description", Value: "Good as a present"},
	}},
	{"", types.TableProductTags, []types.ColumnValue{
		{Column: "product_id", Value: sampleRef("phone")},
		{Column: "tag_id", Value: sampleRef("mobile")},
	}},
	{"", types.TableProductTags, []types.ColumnValue{
		{Column: "product_id", Value: sampleRef("novel")},
		{Column: "tag_id", Value: sampleRef("gift")},
	}},
	{"", types.TableProductReviews, []types.ColumnValue{
		{Column: "product_id", Value: sampleRef("phone")},
		{Column: "user_id", Value: sampleRef("alice")},
		{Column: "rating", Value: int64(5)},
		{Column: "review_text", Value: "Fast and light."},
	}},
	{"", types.TableProductReviews, []types.ColumnValue{
		{Column: "product_id", Value: sampleRef("charger")},
		{Column: "user_id", Value: sampleRef("bob")},
		{Column: "rating", Value: int64(3)},
	}},
}

// SeedSample fills an empty database with a small sample store. Passwords
// are stored as hash(plaintext). Seeding runs only when the users and
// categories tables are both empty; it reports whether rows were written.
// schemas resolves a table name to its schema.
func (b *Backend) SeedSample(ctx context.Context, schemas func(string) (*types.EntitySchema, error), hash func(string) string) (bool, error) {
	for _, table := range []string{types.TableUsers, types.TableCategories} {
		s, err := schemas(table)
		if err != nil {
			return false, err
		}
		rows, err := b.List(ctx, s)
		if err != nil {
			return false, err
		}
		if len(rows) > 0 {
			b.log.InfoContext(ctx, "seed skipped", "reason", "database not empty")
			return false, nil
		}
	}

	keys := make(map[string]types.Key)
	for _, row := range sampleRows {
		s, err := schemas(row.table)
		if err != nil {
			return false, err
		}
		values := make([]types.ColumnValue, len(row.values))
		for i, v := range row.values {
			switch x := v.Value.(type) {
			case sampleRef:
				k, ok := keys[string(x)]
				if !ok {
					return false, fmt.Errorf("seeding %s: unknown sample row %q", row.table, x)
				}
				v.Value = k[0]
			case secret:
				v.Value = hash(string(x))
			}
			values[i] = v
		}
		key, err := b.Insert(ctx, s, values)
		if err != nil {
			return false, fmt.Errorf("seeding %s: %w", row.table, err)
		}
		if row.name != "" {
			keys[row.name] = key
		}
	}
	b.log.InfoContext(ctx, "seeded sample data", "rows", len(sampleRows))
	return true, nil
}
