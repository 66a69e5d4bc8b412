package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/catalog"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/routes"
	"github.com/your-org/storefront/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memCatalog struct {
	products map[string]catalog.Product
	order    []string
}

func (m *memCatalog) GetByHandle(_ context.Context, handle string) (*catalog.Product, error) {
	p, ok := m.products[handle]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (m *memCatalog) List(_ context.Context, limit int) ([]catalog.Product, error) {
	out := []catalog.Product{}
	for _, h := range m.order {
		if len(out) == limit {
			break
		}
		out = append(out, m.products[h])
	}
	return out, nil
}

func (m *memCatalog) Upsert(_ context.Context, p *catalog.Product) error {
	if _, ok := m.products[p.Handle]; !ok {
		m.order = append(m.order, p.Handle)
	}
	m.products[p.Handle] = *p
	return nil
}

func usd(amount string) catalog.Money {
	return catalog.Money{Amount: decimal.RequireFromString(amount), CurrencyCode: "USD"}
}

func tee() catalog.Product {
	return catalog.Product{
		ID: "prod-tee", Title: "Classic Tee", Handle: "classic-tee",
		Options: []catalog.Option{
			{Name: "Color", Values: []string{"Red", "Blue"}},
			{Name: "Size", Values: []string{"S", "M"}},
		},
		Variants: []catalog.Variant{
			{ID: "V1", Title: "Red / S", Price: usd("20.00"), AvailableForSale: true,
				SelectedOptions: []catalog.SelectedOption{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "S"}}},
			{ID: "V2", Title: "Red / M", Price: usd("22.00"), AvailableForSale: false,
				SelectedOptions: []catalog.SelectedOption{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "M"}}},
			{ID: "V3", Title: "Blue / S", Price: usd("20.00"), AvailableForSale: true,
				SelectedOptions: []catalog.SelectedOption{{Name: "Color", Value: "Blue"}, {Name: "Size", Value: "S"}}},
		},
		Images: []catalog.Image{{URL: "https://cdn.example.com/tee.jpg"}},
	}
}

type testAPI struct {
	t       *testing.T
	router  *gin.Engine
	cfg     *config.Config
	catalog *memCatalog
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		App: config.AppConfig{Environment: "test"},
		JWT: config.JWTConfig{
			Secret:            "test-secret-that-is-at-least-32-characters",
			Issuer:            "storefront-auth",
			AccessTokenExpiry: time.Hour,
		},
		Cart: config.CartConfig{SessionTTL: time.Hour, SessionCookie: "session_id", DefaultCurrency: "USD"},
	}

	mem := &memCatalog{products: map[string]catalog.Product{}}
	require.NoError(t, mem.Upsert(context.Background(), ptr(tee())))

	catalogService := catalog.NewService(mem, logger)
	cartService := cart.NewService(cart.NewRedisRepository(client, cfg.Cart.SessionTTL), catalogService, cfg, logger)

	r := gin.New()
	routes.SetupRoutes(r.Group("/api/v1"), &routes.Handlers{
		Catalog: handlers.NewCatalogHandler(catalogService),
		Cart:    handlers.NewCartHandler(cartService, cfg),
	}, cfg)

	return &testAPI{t: t, router: r, cfg: cfg, catalog: mem}
}

func ptr[T any](v T) *T { return &v }

type request struct {
	method, path string
	body         interface{}
	session      string
	token        string
}

func (a *testAPI) do(req request) *httptest.ResponseRecorder {
	a.t.Helper()
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		require.NoError(a.t, err)
		body = bytes.NewReader(data)
	}

	httpReq := httptest.NewRequest(req.method, req.path, body)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.session != "" {
		httpReq.AddCookie(&http.Cookie{Name: a.cfg.Cart.SessionCookie, Value: req.session})
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httpReq)
	return w
}

func (a *testAPI) token(userID uint, admin bool) string {
	a.t.Helper()
	tok, err := auth.NewJWTManager(a.cfg).GenerateAccessToken(userID, "shopper@example.com", admin)
	require.NoError(a.t, err)
	return tok
}

type cartEnvelope struct {
	Data struct {
		Items []struct {
			VariantID string `json:"variant_id"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		TotalItemCount int `json:"total_item_count"`
		TotalPrice     *struct {
			Amount       string `json:"amount"`
			CurrencyCode string `json:"currency_code"`
		} `json:"total_price"`
	} `json:"data"`
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartEnvelope {
	t.Helper()
	var env cartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestCatalogEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(request{method: "GET", path: "/api/v1/products"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"handle":"classic-tee"`)

	w = api.do(request{method: "GET", path: "/api/v1/products?limit=zero"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(request{method: "GET", path: "/api/v1/products/classic-tee"})
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Data catalog.ProductDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, catalog.Selection{"Color": "Red", "Size": "S"}, detail.Data.DefaultSelection)
	require.NotNil(t, detail.Data.DefaultVariant)
	assert.Equal(t, "V1", detail.Data.DefaultVariant.ID)
	assert.True(t, detail.Data.Purchasable)

	w = api.do(request{method: "GET", path: "/api/v1/products/nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveEndpoint(t *testing.T) {
	api := newTestAPI(t)
	path := "/api/v1/products/classic-tee/resolve"

	type result struct {
		Data catalog.ResolveResult `json:"data"`
	}
	resolve := func(body interface{}) (int, result) {
		w := api.do(request{method: "POST", path: path, body: body})
		var res result
		if w.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		}
		return w.Code, res
	}

	code, res := resolve(gin.H{"selection": gin.H{"Color": "Red", "Size": "S"}, "option": "Size", "value": "M"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, res.Data.Matched)
	assert.Equal(t, "V2", res.Data.Variant.ID)
	assert.False(t, res.Data.CanPurchase, "V2 is sold out")

	code, res = resolve(gin.H{"selection": gin.H{"Color": "Red", "Size": "M"}, "option": "Color", "value": "Blue"})
	require.Equal(t, http.StatusOK, code)
	assert.False(t, res.Data.Matched, "Blue/M does not exist")
	assert.Equal(t, catalog.Selection{"Color": "Blue", "Size": "M"}, res.Data.Selection)
	assert.False(t, res.Data.CanPurchase)

	code, _ = resolve(gin.H{"selection": gin.H{}, "option": "Material", "value": "Wool"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCartFlow(t *testing.T) {
	api := newTestAPI(t)
	session := "guest-1"

	for _, add := range []gin.H{
		{"handle": "classic-tee", "variant_id": "V1", "quantity": 1},
		{"handle": "classic-tee", "variant_id": "V3", "quantity": 2},
		{"handle": "classic-tee", "variant_id": "V1", "quantity": 1},
	} {
		w := api.do(request{method: "POST", path: "/api/v1/cart/items", body: add, session: session})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	env := decodeCart(t, api.do(request{method: "GET", path: "/api/v1/cart", session: session}))
	require.Len(t, env.Data.Items, 2)
	assert.Equal(t, "V1", env.Data.Items[0].VariantID)
	assert.Equal(t, 2, env.Data.Items[0].Quantity)
	assert.Equal(t, "V3", env.Data.Items[1].VariantID)
	assert.Equal(t, 2, env.Data.Items[1].Quantity)
	assert.Equal(t, 4, env.Data.TotalItemCount)
	require.NotNil(t, env.Data.TotalPrice)
	assert.Equal(t, "80", env.Data.TotalPrice.Amount)

	w := api.do(request{method: "GET", path: "/api/v1/cart/count", session: session})
	assert.JSONEq(t, `{"message":"Cart count retrieved successfully","data":{"count":4}}`, w.Body.String())

	w = api.do(request{method: "PUT", path: "/api/v1/cart/items/V1", body: gin.H{"quantity": 0}, session: session})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeCart(t, w).Data.TotalItemCount)

	w = api.do(request{method: "PUT", path: "/api/v1/cart/items/V1", body: gin.H{"quantity": 3}, session: session})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(request{method: "PUT", path: "/api/v1/cart/items/V3", body: gin.H{}, session: session})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(request{method: "DELETE", path: "/api/v1/cart/items/V3", session: session})
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(request{method: "DELETE", path: "/api/v1/cart/items/V3", session: session})
	assert.Equal(t, http.StatusOK, w.Code, "removing twice is harmless")

	w = api.do(request{method: "DELETE", path: "/api/v1/cart", session: session})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAddToCartErrors(t *testing.T) {
	api := newTestAPI(t)
	require.NoError(t, api.catalog.Upsert(context.Background(), &catalog.Product{ID: "p-empty", Handle: "empty", Title: "Empty"}))

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"missing handle", gin.H{"variant_id": "V1"}, http.StatusBadRequest},
		{"negative quantity", gin.H{"handle": "classic-tee", "variant_id": "V1", "quantity": -2}, http.StatusBadRequest},
		{"unknown product", gin.H{"handle": "nope"}, http.StatusNotFound},
		{"unknown variant", gin.H{"handle": "classic-tee", "variant_id": "V9"}, http.StatusNotFound},
		{"unavailable variant", gin.H{"handle": "classic-tee", "variant_id": "V2"}, http.StatusConflict},
		{"no variants", gin.H{"handle": "empty"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(request{method: "POST", path: "/api/v1/cart/items", body: tt.body, session: "s"})
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	env := decodeCart(t, api.do(request{method: "GET", path: "/api/v1/cart", session: "s"}))
	assert.Empty(t, env.Data.Items)
}

func TestQuickAddAndSessionCookie(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(request{method: "POST", path: "/api/v1/products/classic-tee/quick-add"})
	require.Equal(t, http.StatusOK, w.Code)

	session := w.Header().Get("X-Session-ID")
	require.NotEmpty(t, session, "a guest session is started")
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, session, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	env := decodeCart(t, w)
	require.Len(t, env.Data.Items, 1)
	assert.Equal(t, "V1", env.Data.Items[0].VariantID)

	w = api.do(request{method: "GET", path: "/api/v1/cart", session: session})
	assert.Equal(t, 1, decodeCart(t, w).Data.TotalItemCount)
}

func TestMergeAndAuthenticatedCart(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(5, false)

	w := api.do(request{method: "POST", path: "/api/v1/cart/items", session: "guest",
		body: gin.H{"handle": "classic-tee", "variant_id": "V3", "quantity": 2}})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(request{method: "POST", path: "/api/v1/cart/merge", session: "guest"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(request{method: "POST", path: "/api/v1/cart/merge", session: "guest", token: token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decodeCart(t, w).Data.TotalItemCount)

	w = api.do(request{method: "GET", path: "/api/v1/cart", token: token})
	assert.Equal(t, 2, decodeCart(t, w).Data.TotalItemCount)

	w = api.do(request{method: "GET", path: "/api/v1/cart", session: "guest"})
	assert.Zero(t, decodeCart(t, w).Data.TotalItemCount, "guest cart is emptied by the merge")
}

func TestValidateEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(request{method: "POST", path: "/api/v1/cart/items", session: "s",
		body: gin.H{"handle": "classic-tee", "variant_id": "V1"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(request{method: "POST", path: "/api/v1/cart/validate", session: "s"})
	assert.Equal(t, http.StatusOK, w.Code)

	changed := tee()
	changed.Variants[0].Price = usd("24.00")
	require.NoError(t, api.catalog.Upsert(context.Background(), &changed))

	w = api.do(request{method: "POST", path: "/api/v1/cart/validate", session: "s"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), cart.IssuePriceChanged)
}

func TestAdminUpsert(t *testing.T) {
	api := newTestAPI(t)
	body := gin.H{
		"id": "prod-mug", "handle": "mug", "title": "Mug",
		"variants": []gin.H{{
			"id": "mug-1", "title": "Default", "available_for_sale": true,
			"price": gin.H{"amount": "12.50", "currency_code": "USD"},
		}},
	}

	w := api.do(request{method: "POST", path: "/api/v1/admin/products", body: body})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(request{method: "POST", path: "/api/v1/admin/products", body: body, token: api.token(1, false)})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(request{method: "POST", path: "/api/v1/admin/products", body: gin.H{"handle": "x"}, token: api.token(1, true)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(request{method: "POST", path: "/api/v1/admin/products", body: body, token: api.token(1, true)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(request{method: "POST", path: "/api/v1/products/mug/quick-add", session: "s"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mug-1", decodeCart(t, w).Data.Items[0].VariantID)
}
