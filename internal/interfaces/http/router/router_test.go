package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("test", "/test")
	g.GET("/items", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.Register(g)
	r.Use(func(c *gin.Context) {
		c.Header("X-Api", "v1")
		c.Next()
	})
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/test/items")
	assert.Equal(t, "v1", w.Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("console", "/console")
		assert.Equal(t, "console", g.Name())
		assert.Equal(t, "/console", g.Prefix())
	})

	t.Run("registers each method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) }).
			POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) }).
			DELETE("/items", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/test/items").Code)
		assert.Equal(t, http.StatusCreated, serve(engine, http.MethodPost, "/api/v1/test/items").Code)
		assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodDelete, "/api/v1/test/items").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodPut, "/api/v1/test/items").Code)
	})

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})
		g.GET("/items", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/test/items")
		assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	})

	t.Run("creates subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("console", "/console")
		g.Group("products", "/products").GET("", func(c *gin.Context) { c.String(http.StatusOK, "products") })
		g.Group("orders", "/orders").GET("/items", func(c *gin.Context) { c.String(http.StatusOK, "orders") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/console/products")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "products", w.Body.String())

		w = serve(engine, http.MethodGet, "/api/v1/console/orders/items")
		assert.Equal(t, "orders", w.Body.String())
	})

	t.Run("lists routes", func(t *testing.T) {
		noop := func(*gin.Context) {}
		g := NewDomainGroup("console", "/console")
		g.GET("", noop)
		sub := g.Group("orders", "/orders")
		sub.POST("/reload", noop)
		sub.Group("selection", "/selection").DELETE("", noop)

		assert.Equal(t, []string{
			"GET /console",
			"POST /console/orders/reload",
			"DELETE /console/orders/selection",
		}, g.Routes())
	})
}
