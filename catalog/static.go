package catalog

import "context"

// StaticGateway serves catalog lookups from fixed tables. Used in tests and
// for local development without a catalog service.
type StaticGateway struct {
	Products  map[string]Product
	Coupons   map[string]Coupon
	Shippings map[string]Shipping
}

func NewStaticGateway() *StaticGateway {
	return &StaticGateway{
		Products:  make(map[string]Product),
		Coupons:   make(map[string]Coupon),
		Shippings: make(map[string]Shipping),
	}
}

func (g *StaticGateway) GetProduct(ctx context.Context, id string) (*Product, error) {
	if p, ok := g.Products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (g *StaticGateway) GetCoupon(ctx context.Context, id string) (*Coupon, error) {
	if c, ok := g.Coupons[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (g *StaticGateway) GetShipping(ctx context.Context, id string) (*Shipping, error) {
	if s, ok := g.Shippings[id]; ok {
		return &s, nil
	}
	return nil, nil
}
