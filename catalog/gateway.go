package catalog

import "context"

// Product is the canonical catalog record for a purchasable item.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

type Coupon struct {
	ID       string  `json:"id"`
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
}

type Shipping struct {
	ID     string  `json:"id"`
	Method string  `json:"method"`
	Fee    float64 `json:"fee"`
}

// Gateway resolves opaque catalog identifiers to their canonical records.
// A missing record is (nil, nil); a non-nil error means the catalog itself
// could not be reached.
type Gateway interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetCoupon(ctx context.Context, id string) (*Coupon, error)
	GetShipping(ctx context.Context, id string) (*Shipping, error)
}
