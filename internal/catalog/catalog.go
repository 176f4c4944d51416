// Package catalog holds the static per-table field configuration of the
// online store: which columns are shown, editable, searchable and required,
// and how each one is presented.
package catalog

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// OrderStatuses is the closed set of order states.
var OrderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}

// Ratings is the closed set of review ratings.
var Ratings = []string{"1", "2", "3", "4", "5"}

var (
	refCategory = &types.ForeignRef{Table: types.TableCategories, Column: "category_id", LabelColumn: "name"}
	refUser     = &types.ForeignRef{Table: types.TableUsers, Column: "user_id", LabelColumn: "username"}
	refProduct  = &types.ForeignRef{Table: types.TableProducts, Column: "product_id", LabelColumn: "name"}
	refOrder    = &types.ForeignRef{Table: types.TableOrders, Column: "order_id", LabelColumn: "order_date"}
	refTag      = &types.ForeignRef{Table: types.TableTags, Column: "tag_id", LabelColumn: "name"}
)

var schemas = []*types.EntitySchema{
	{
		Table: types.TableUsers,
		Title: "Users",
		Columns: []types.ColumnSpec{
			{Name: "user_id", Label: "User ID", ReadOnly: true},
			{Name: "username", Label: "Username"},
			{Name: "email", Label: "Email"},
			{Name: "password_hash", Label: "Password", Kind: types.MaskedSecret},
			{Name: "first_name", Label: "First name"},
			{Name: "last_name", Label: "Last name"},
			{Name: "phone", Label: "Phone"},
			{Name: "registration_date", Label: "Registered", ReadOnly: true},
			{Name: "is_active", Label: "Active", Kind: types.BooleanFlag},
		},
		PrimaryKey: []string{"user_id"},
		Searchable: []string{"username", "email", "first_name", "last_name"},
		Required:   []string{"username", "email", "password_hash"},
	},
	{
		Table: types.TableCategories,
		Title: "Categories",
		Columns: []types.ColumnSpec{
			{Name: "category_id", Label: "Category ID", ReadOnly: true},
			{Name: "name", Label: "Name"},
			{Name: "description", Label: "Description"},
			{Name: "parent_category_id", Label: "Parent", Kind: types.ForeignKeyChoice, Ref: refCategory},
		},
		PrimaryKey: []string{"category_id"},
		Searchable: []string{"name"},
		Required:   []string{"name"},
	},
	{
		Table: types.TableProducts,
		Title: "Products",
		Columns: []types.ColumnSpec{
			{Name: "product_id", Label: "Product ID", ReadOnly: true},
			{Name: "category_id", Label: "Category", Kind: types.ForeignKeyChoice, Ref: refCategory},
			{Name: "name", Label: "Name"},
			{Name: "description", Label: "Description"},
			{Name: "price", Label: "Price"},
			{Name: "stock_quantity", Label: "In stock"},
			{Name: "created_at", Label: "Added", ReadOnly: true},
			{Name: "is_active", Label: "On sale", Kind: types.BooleanFlag},
		},
		PrimaryKey: []string{"product_id"},
		Searchable: []string{"name", "description"},
		Required:   []string{"name", "price", "category_id"},
	},
	{
		Table: types.TableOrders,
		Title: "Orders",
		Columns: []types.ColumnSpec{
			{Name: "order_id", Label: "Order ID", ReadOnly: true},
			{Name: "user_id", Label: "User", Kind: types.ForeignKeyChoice, Ref: refUser},
			{Name: "order_date", Label: "Date", ReadOnly: true},
			{Name: "status", Label: "Status", Kind: types.FixedChoice, Options: OrderStatuses},
			{Name: "total_amount", Label: "Total"},
			{Name: "shipping_address", Label: "Shipping address"},
			{Name: "payment_method", Label: "Payment method"},
			{Name: "payment_status", Label: "Payment status"},
		},
		PrimaryKey: []string{"order_id"},
		Searchable: []string{"status"},
		Required:   []string{"user_id", "total_amount", "shipping_address"},
	},
	{
		Table: types.TableOrderItems,
		Title: "Order items",
		Columns: []types.ColumnSpec{
			{Name: "order_item_id", Label: "Item ID", ReadOnly: true},
			{Name: "order_id", Label: "Order", Kind: types.ForeignKeyChoice, Ref: refOrder},
			{Name: "product_id", Label: "Product", Kind: types.ForeignKeyChoice, Ref: refProduct},
			{Name: "quantity", Label: "Quantity"},
			{Name: "unit_price", Label: "Unit price"},
		},
		PrimaryKey: []string{"order_item_id"},
		Required:   []string{"order_id", "product_id", "quantity", "unit_price"},
	},
	{
		Table: types.TableTags,
		Title: "Tags",
		Columns: []types.ColumnSpec{
			{Name: "tag_id", Label: "Tag ID", ReadOnly: true},
			{Name: "name", Label: "Name"},
			{Name: "description", Label: "Description"},
		},
		PrimaryKey: []string{"tag_id"},
		Searchable: []string{"name"},
		Required:   []string{"name"},
	},
	{
		Table: types.TableProductTags,
		Title: "Product tags",
		Columns: []types.ColumnSpec{
			{Name: "product_id", Label: "Product", Kind: types.ForeignKeyChoice, Ref: refProduct},
			{Name: "tag_id", Label: "Tag", Kind: types.ForeignKeyChoice, Ref: refTag},
		},
		PrimaryKey: []string{"product_id", "tag_id"},
		Required:   []string{"product_id", "tag_id"},
	},
	{
		Table: types.TableProductReviews,
		Title: "Reviews",
		Columns: []types.ColumnSpec{
			{Name: "review_id", Label: "Review ID", ReadOnly: true},
			{Name: "product_id", Label: "Product", Kind: types.ForeignKeyChoice, Ref: refProduct},
			{Name: "user_id", Label: "User", Kind: types.ForeignKeyChoice, Ref: refUser},
			{Name: "rating", Label: "Rating", Kind: types.NumericChoice, Options: Ratings},
			{Name: "review_text", Label: "Text"},
			{Name: "created_at", Label: "Written", ReadOnly: true},
		},
		PrimaryKey: []string{"review_id"},
		Searchable: []string{"review_text"},
		Required:   []string{"product_id", "user_id", "rating"},
	},
}

var byName = func() map[string]*types.EntitySchema {
	m := make(map[string]*types.EntitySchema, len(schemas))
	for _, s := range schemas {
		m[s.Table] = s
	}
	return m
}()

// Lookup returns the schema of the named table.
// Returns ErrTableNotFound for any other name.
func Lookup(name string) (*types.EntitySchema, error) {
	s, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, types.ErrTableNotFound)
	}
	return s, nil
}

// All returns every schema in menu order.
func All() []*types.EntitySchema {
	return slices.Clone(schemas)
}

// Names returns every table name in menu order.
func Names() []string {
	return slices.Clone(types.StandardTableNames)
}

// Validate checks every schema and every foreign reference against the
// catalog.
func Validate() error {
	for _, s := range schemas {
		if err := s.Validate(); err != nil {
			return err
		}
		for _, c := range s.Columns {
			if c.Ref == nil {
				continue
			}
			target, err := Lookup(c.Ref.Table)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", s.Table, c.Name, err)
			}
			if target.ColumnIndex(c.Ref.Column) < 0 || target.ColumnIndex(c.Ref.LabelColumn) < 0 {
				return fmt.Errorf("%s.%s -> %s: %w", s.Table, c.Name, c.Ref.Table, types.ErrUnknownColumn)
			}
		}
	}
	return nil
}
