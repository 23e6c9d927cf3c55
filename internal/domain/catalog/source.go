package catalog

import "context"

// Source loads the product feed
type Source interface {
	FetchProductList(ctx context.Context) (ProductList, error)
}
