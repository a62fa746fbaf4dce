package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPGateway resolves catalog records from the catalog service over HTTP.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (g *HTTPGateway) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	ok, err := g.fetch(ctx, fmt.Sprintf("%s/products/%s", g.baseURL, id), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (g *HTTPGateway) GetCoupon(ctx context.Context, id string) (*Coupon, error) {
	var c Coupon
	ok, err := g.fetch(ctx, fmt.Sprintf("%s/coupons/%s", g.baseURL, id), &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (g *HTTPGateway) GetShipping(ctx context.Context, id string) (*Shipping, error) {
	var s Shipping
	ok, err := g.fetch(ctx, fmt.Sprintf("%s/shipping/%s", g.baseURL, id), &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

// fetch returns (false, nil) on 404 so callers can distinguish a missing
// record from an unreachable catalog.
func (g *HTTPGateway) fetch(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("catalog service returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}
