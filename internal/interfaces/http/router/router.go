// Package router wires handler route registrars onto the gin engine. The
// bridge serves three surfaces with different authentication: the public
// operations endpoints, the token-protected operations endpoints, and the
// webhook endpoints the storefront signs with HMAC.
package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	authMW     gin.HandlerFunc
	webhookMW  []gin.HandlerFunc

	public    []RouteRegistrar
	protected []RouteRegistrar
	webhooks  []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAuthMiddleware sets the middleware guarding protected registrars.
// Without it, protected routes are served unguarded; main must only skip it
// in local development.
func WithAuthMiddleware(mw gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.authMW = mw
	}
}

// WithWebhookMiddleware sets middleware applied to the webhook group only,
// such as the delivery body size cap.
func WithWebhookMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.webhookMW = mw
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a registrar to the public API surface
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.public = append(r.public, registrar)
	return r
}

// RegisterProtected adds a registrar behind the auth middleware
func (r *Router) RegisterProtected(registrar RouteRegistrar) *Router {
	r.protected = append(r.protected, registrar)
	return r
}

// RegisterWebhooks adds a registrar to the webhook surface. Webhook routes
// live under /webhooks outside the versioned API prefix; their URLs are
// configured on the storefront and must stay stable across API versions.
func (r *Router) RegisterWebhooks(registrar RouteRegistrar) *Router {
	r.webhooks = append(r.webhooks, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.public {
		registrar.RegisterRoutes(api)
	}

	secured := r.engine.Group("/api/" + r.apiVersion)
	if r.authMW != nil {
		secured.Use(r.authMW)
	}
	for _, registrar := range r.protected {
		registrar.RegisterRoutes(secured)
	}

	hooks := r.engine.Group("/webhooks")
	if len(r.webhookMW) > 0 {
		hooks.Use(r.webhookMW...)
	}
	for _, registrar := range r.webhooks {
		registrar.RegisterRoutes(hooks)
	}
}
