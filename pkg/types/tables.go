package types

// Standard table names of the online store schema.
const (
	TableUsers          = "users"
	TableCategories     = "categories"
	TableProducts       = "products"
	TableOrders         = "orders"
	TableOrderItems     = "order_items"
	TableTags           = "tags"
	TableProductTags    = "product_tags"
	TableProductReviews = "product_reviews"
)

// StandardTableNames lists all standard table names in menu order.
var StandardTableNames = []string{
	TableUsers,
	TableCategories,
	TableProducts,
	TableOrders,
	TableOrderItems,
	TableTags,
	TableProductTags,
	TableProductReviews,
}
