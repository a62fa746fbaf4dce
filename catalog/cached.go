package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedGateway is a read-through redis cache in front of another Gateway.
// Only hits are cached; misses and upstream failures always go back to the
// inner gateway. Cache failures degrade to a direct lookup.
type CachedGateway struct {
	inner  Gateway
	client *redis.Client
	ttl    time.Duration
}

func NewCachedGateway(inner Gateway, client *redis.Client, ttl time.Duration) *CachedGateway {
	return &CachedGateway{inner: inner, client: client, ttl: ttl}
}

func (g *CachedGateway) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	if g.get(ctx, g.key("product", id), &p) {
		return &p, nil
	}
	found, err := g.inner.GetProduct(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	g.set(ctx, g.key("product", id), found)
	return found, nil
}

func (g *CachedGateway) GetCoupon(ctx context.Context, id string) (*Coupon, error) {
	var c Coupon
	if g.get(ctx, g.key("coupon", id), &c) {
		return &c, nil
	}
	found, err := g.inner.GetCoupon(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	g.set(ctx, g.key("coupon", id), found)
	return found, nil
}

func (g *CachedGateway) GetShipping(ctx context.Context, id string) (*Shipping, error) {
	var s Shipping
	if g.get(ctx, g.key("shipping", id), &s) {
		return &s, nil
	}
	found, err := g.inner.GetShipping(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	g.set(ctx, g.key("shipping", id), found)
	return found, nil
}

func (g *CachedGateway) key(kind, id string) string {
	return fmt.Sprintf("catalog:%s:%s", kind, id)
}

func (g *CachedGateway) get(ctx context.Context, key string, out any) bool {
	data, err := g.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(data), out) == nil
}

func (g *CachedGateway) set(ctx context.Context, key string, val any) {
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = g.client.Set(ctx, key, data, g.ttl).Err()
}
