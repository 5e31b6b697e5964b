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

// registrarFunc adapts a plain function to the RouteRegistrar interface.
type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func pingRegistrar(path, body string) RouteRegistrar {
	return registrarFunc(func(rg *gin.RouterGroup) {
		rg.GET(path, func(c *gin.Context) {
			c.String(http.StatusOK, body)
		})
	})
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.public)
	assert.Empty(t, r.protected)
	assert.Empty(t, r.webhooks)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))
	r.Register(pingRegistrar("/ping", "pong"))
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v2/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterPublicRoutes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Register(pingRegistrar("/system/ping", "pong"))
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/system/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterProtectedRoutes(t *testing.T) {
	guard := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}

	engine := gin.New()
	r := NewRouter(engine, WithAuthMiddleware(guard))
	r.Register(pingRegistrar("/system/ping", "pong"))
	r.RegisterProtected(pingRegistrar("/erp/probe", "ok"))
	r.Setup()

	// Protected route without credentials is rejected
	req := httptest.NewRequest("GET", "/api/v1/erp/probe", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Protected route with credentials passes
	req = httptest.NewRequest("GET", "/api/v1/erp/probe", nil)
	req.Header.Set("Authorization", "Bearer token")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	// Public route stays open; the guard only wraps protected registrars
	req = httptest.NewRequest("GET", "/api/v1/system/ping", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterWebhookRoutes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.RegisterWebhooks(registrarFunc(func(rg *gin.RouterGroup) {
		rg.POST("/orders/create", func(c *gin.Context) {
			c.String(http.StatusOK, "received")
		})
	}))
	r.Setup()

	// Webhook routes mount under /webhooks, not under the API version
	req := httptest.NewRequest("POST", "/webhooks/orders/create", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("POST", "/api/v1/webhooks/orders/create", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterWebhookMiddleware(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithWebhookMiddleware(func(c *gin.Context) {
		c.Header("X-Webhook-Group", "applied")
		c.Next()
	}))
	r.Register(pingRegistrar("/system/ping", "pong"))
	r.RegisterWebhooks(registrarFunc(func(rg *gin.RouterGroup) {
		rg.POST("/orders/create", func(c *gin.Context) {
			c.String(http.StatusOK, "received")
		})
	}))
	r.Setup()

	// Webhook middleware runs on the webhook surface
	req := httptest.NewRequest("POST", "/webhooks/orders/create", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "applied", w.Header().Get("X-Webhook-Group"))

	// and not on the API surface
	req = httptest.NewRequest("GET", "/api/v1/system/ping", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("X-Webhook-Group"))
}

func TestRouterChainedRegistration(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(pingRegistrar("/a", "a")).
		Register(pingRegistrar("/b", "b")).
		RegisterProtected(pingRegistrar("/c", "c"))
	r.Setup()

	for _, path := range []string{"/api/v1/a", "/api/v1/b", "/api/v1/c"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "route %s should be registered", path)
	}
}
