package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products/A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Product{ID: "A", Name: "Widget", ImageURL: "http://img/a.jpg", Price: 100})
	})
	mux.HandleFunc("/coupons/123", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Coupon{ID: "123", Code: "WELCOME", Discount: 20})
	})
	mux.HandleFunc("/shipping/123", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Shipping{ID: "123", Method: "standard", Fee: 60})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPGatewayLookups(t *testing.T) {
	srv := newCatalogServer(t)
	gw := NewHTTPGateway(srv.URL)
	ctx := context.Background()

	t.Run("resolves known records", func(t *testing.T) {
		product, err := gw.GetProduct(ctx, "A")
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, "Widget", product.Name)
		assert.Equal(t, 100.0, product.Price)

		coupon, err := gw.GetCoupon(ctx, "123")
		require.NoError(t, err)
		require.NotNil(t, coupon)
		assert.Equal(t, 20.0, coupon.Discount)

		shipping, err := gw.GetShipping(ctx, "123")
		require.NoError(t, err)
		require.NotNil(t, shipping)
		assert.Equal(t, 60.0, shipping.Fee)
	})

	t.Run("missing record is nil without error", func(t *testing.T) {
		product, err := gw.GetProduct(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, product)
	})

	t.Run("unreachable catalog is an error", func(t *testing.T) {
		dead := NewHTTPGateway("http://127.0.0.1:1")
		_, err := dead.GetProduct(ctx, "A")
		assert.Error(t, err)
	})
}
