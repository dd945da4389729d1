package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogapp "github.com/opsconsole/backend/internal/application/catalog"
	"github.com/opsconsole/backend/internal/application/console"
	"github.com/opsconsole/backend/internal/application/consolidation"
	tradeapp "github.com/opsconsole/backend/internal/application/trade"
	"github.com/opsconsole/backend/internal/domain/catalog"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/opsconsole/backend/internal/infrastructure/cache"
	"github.com/opsconsole/backend/internal/infrastructure/config"
	"github.com/opsconsole/backend/internal/interfaces/http/handler"
	"github.com/opsconsole/backend/internal/interfaces/http/middleware"
	"github.com/opsconsole/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newHandlers(t *testing.T, ledger *testutil.MockLedger) Handlers {
	t.Helper()
	runs := new(testutil.MockRunRepository)
	store := cache.NewInMemorySelectionStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	deps := &consolidation.Dependencies{Checkouts: ledger, Members: ledger, Records: ledger, Runs: runs}
	registry := console.NewRegistry(ledger, store, deps, nil)

	return Handlers{
		System:           handler.NewSystemHandler("console", "test", nil),
		Products:         handler.NewProductHandler(registry, catalogapp.NewProductService(ledger, ledger, nil, nil)),
		ProductSelection: handler.NewSelectionHandler(registry, selection.KindProducts),
		Orders:           handler.NewOrderHandler(registry, tradeapp.NewOrderItemService(ledger, nil, nil)),
		OrderSelection:   handler.NewSelectionHandler(registry, selection.KindOrderItems),
		Consolidation:    handler.NewConsolidationHandler(registry, runs),
	}
}

func consoleRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(middleware.TenantHeaderKey, testutil.TestTenantID().String())
	req.Header.Set(middleware.OperatorHeaderKey, "op-1")
	return req
}

func TestConsoleRoutes(t *testing.T) {
	h := newHandlers(t, new(testutil.MockLedger))

	assert.ElementsMatch(t, []string{
		"GET /console/products/groups",
		"POST /console/products/reload",
		"POST /console/products/bulk-delete",
		"POST /console/products/restock",
		"GET /console/products/selection",
		"DELETE /console/products/selection",
		"POST /console/products/selection/toggle",
		"POST /console/products/selection/select-all",
		"GET /console/orders/items",
		"POST /console/orders/reload",
		"POST /console/orders/bulk-delete",
		"GET /console/orders/selection",
		"DELETE /console/orders/selection",
		"POST /console/orders/selection/toggle",
		"POST /console/orders/selection/select-all",
		"GET /console/consolidation",
		"POST /console/consolidation/open",
		"POST /console/consolidation/cancel",
		"POST /console/consolidation/confirm",
		"GET /console/consolidation/runs",
	}, ConsoleRoutes(h).Routes())
}

func TestNewEngine(t *testing.T) {
	ledger := new(testutil.MockLedger)
	engine := NewEngine(EngineConfig{
		HTTP: config.HTTPConfig{MaxBodySize: 1 << 20},
	}, newHandlers(t, ledger))

	t.Run("health and ping need no identity", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

		w = serve(engine, http.MethodGet, "/api/v1/ping")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("console routes require identity", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/api/v1/console/consolidation")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("console route with identity", func(t *testing.T) {
		ledger.On("FetchProducts", mock.Anything, testutil.TestTenantID()).Return([]catalog.Product{}, nil).Once()
		ledger.On("FetchOrderItems", mock.Anything, testutil.TestTenantID()).Return([]trade.OrderItem{}, nil).Once()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, consoleRequest(http.MethodGet, "/api/v1/console/consolidation"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"phase":"idle"`)
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/console/consolidation", nil)
		req.Header.Set("Origin", "https://console.example.com")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestNewEngine_RateLimit(t *testing.T) {
	ledger := new(testutil.MockLedger)
	ledger.On("FetchProducts", mock.Anything, testutil.TestTenantID()).Return([]catalog.Product{}, nil).Once()
	ledger.On("FetchOrderItems", mock.Anything, testutil.TestTenantID()).Return([]trade.OrderItem{}, nil).Once()

	engine := NewEngine(EngineConfig{
		RateLimiter: middleware.NewRateLimiter(0.001, 1, time.Minute),
	}, newHandlers(t, ledger))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, consoleRequest(http.MethodGet, "/api/v1/console/orders/selection"))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, consoleRequest(http.MethodGet, "/api/v1/console/orders/selection"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// the limiter only guards console routes
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}
