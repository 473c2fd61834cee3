package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/prizechest/pkg/xcontext"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. A returned error stops the request
// and is sent to the client.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response has been written.
type CloserFunc func(ctx context.Context)

type Router struct {
	engine  *gin.Engine
	inner   gin.IRouter
	rootCtx context.Context

	befores []MiddlewareFunc
	closers []CloserFunc
}

// New returns a router whose handlers receive request contexts carrying the
// values of ctx.
func New(ctx context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{
		engine:  engine,
		inner:   engine,
		rootCtx: ctx,
	}
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

// Before appends a middleware run before every handler registered later.
func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

// After appends a closer run after every handler registered later.
func (r *Router) After(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// Handle registers a plain http.Handler, e.g. for websocket upgrades.
func (r *Router) Handle(method, pattern string, handler http.Handler) {
	r.inner.Handle(method, pattern, gin.WrapH(handler))
}

func (r *Router) Group(pattern string) *Router {
	return &Router{
		engine:  r.engine,
		inner:   r.inner.Group(pattern),
		rootCtx: r.rootCtx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

// Handler returns the root handler with CORS applied for the configured
// origins.
func (r *Router) Handler() http.Handler {
	cfg := xcontext.Configs(r.rootCtx)
	return cors.New(cors.Options{
		AllowedOrigins: cfg.ApiServer.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding"},
	}).Handler(r.engine)
}
