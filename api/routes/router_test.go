package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkitchen/catering-backend/internal/cart"
	"github.com/mkitchen/catering-backend/internal/catalog"
	"github.com/mkitchen/catering-backend/internal/checkout"
	"github.com/mkitchen/catering-backend/internal/notify"
	"github.com/mkitchen/catering-backend/internal/orders"
	"github.com/mkitchen/catering-backend/pkg/config"
	"github.com/mkitchen/catering-backend/pkg/enums"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/kvstore"
	"github.com/mkitchen/catering-backend/pkg/lock"
	"github.com/mkitchen/catering-backend/pkg/metrics"
)

type stubMenu map[string]catalog.Item

func (s stubMenu) List(context.Context, catalog.Filters) ([]catalog.Item, error) {
	out := make([]catalog.Item, 0, len(s))
	for _, item := range s {
		out = append(out, item)
	}
	return out, nil
}

func (s stubMenu) Get(_ context.Context, id string) (catalog.Item, error) {
	item, ok := s[id]
	if !ok {
		return catalog.Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return item, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		Session: config.SessionConfig{
			Secret:     "router-secret",
			Issuer:     "mkitchen-test",
			TTL:        time.Hour,
			CookieName: "mk_session",
		},
		Admin:     config.AdminConfig{Token: "admin-token"},
		RateLimit: config.RateLimitConfig{PlaceOrderWindow: time.Minute, PlaceOrderLimit: 10},
	}
}

type testServer struct {
	handler http.Handler
	orders  *orders.Repository
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	storage := kvstore.NewMemory()
	menu := stubMenu{
		"butter-chicken": {ID: "butter-chicken", Name: "Butter Chicken Deluxe", Price: decimal.NewFromInt(50), Available: true},
	}
	carts, err := cart.NewService(cart.ServiceParams{Storage: storage, Catalog: menu})
	require.NoError(t, err)

	ordersRepo := orders.NewRepository(storage, nil)
	reg := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(reg)
	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Flows:   checkout.NewRepository(storage, nil),
		Carts:   carts,
		Orders:  ordersRepo,
		Locks:   lock.NewMemoryFactory(),
		Email:   notify.NewLogNotifier(enums.NotificationChannelEmail, nil),
		SMS:     notify.NewLogNotifier(enums.NotificationChannelSMS, nil),
		Metrics: checkoutMetrics,
	})
	require.NoError(t, err)

	handler := NewRouter(testConfig(), nil, nil, nil, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), menu, carts, checkoutSvc, ordersRepo)
	return &testServer{handler: handler, orders: ordersRepo}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if s.token != "" {
		req.Header.Set("X-Session-Token", s.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)
	if tok := resp.Header().Get("X-Session-Token"); tok != "" {
		s.token = tok
	}
	return resp
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/metrics", "", nil).Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/api/v1/menu", "", nil).Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodGet, "/health/live", "", nil)
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
}

func TestCheckoutJourney(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/api/v1/cart/items", `{"itemId":"butter-chicken","quantity":2}`, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NotEmpty(t, srv.token)

	shipping := `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","phone":"555-0100",
		"address":"1 Loop Rd","city":"San Diego","state":"CA","zipCode":"92101",
		"deliveryDate":"2026-12-24","deliveryTime":"18:00"}`
	resp = srv.do(t, http.MethodPut, "/api/v1/checkout/shipping", shipping, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = srv.do(t, http.MethodPut, "/api/v1/checkout/payment", `{"method":"paypal"}`, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = srv.do(t, http.MethodPost, "/api/v1/checkout/place-order", "", map[string]string{"Idempotency-Key": "k1"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var placed struct {
		Data checkout.Confirmation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &placed))
	require.NotEmpty(t, placed.Data.OrderID)
	assert.True(t, placed.Data.Email.Success)
	assert.True(t, placed.Data.SMS.Success)
	assert.True(t, placed.Data.Pricing.Total.Equal(decimal.RequireFromString("143.5")))

	resp = srv.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"itemCount":0`)

	resp = srv.do(t, http.MethodGet, "/api/v1/orders/"+placed.Data.OrderID, "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"pending"`)

	resp = srv.do(t, http.MethodGet, "/api/admin/v1/orders", "", map[string]string{"Authorization": "Bearer admin-token"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), placed.Data.OrderID)
}

func TestPlaceOrderFromShippingStepIsStateConflict(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", `{"itemId":"butter-chicken","quantity":1}`, nil)

	resp := srv.do(t, http.MethodPost, "/api/v1/checkout/place-order", "", map[string]string{"Idempotency-Key": "k1"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	ids, err := srv.orders.IDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", `{"itemId":"butter-chicken","quantity":3}`, nil)

	other := &testServer{handler: srv.handler}
	resp := other.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"itemCount":0`)
	assert.NotEqual(t, srv.token, other.token)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/api/admin/v1/orders", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/api/admin/v1/orders", "", map[string]string{"Authorization": "Bearer wrong"}).Code)
}
