package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"churnboard.telecomx.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a RestAPI with a per-client rate limiter built from the
// application config.
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, app.Config.RateBurst),
	}
}

// WithMiddleware wraps handler with request logging, security headers, rate
// limiting and compression, outermost first.
func (api *RestAPI) WithMiddleware(handler http.Handler) http.Handler {
	compression := NewCompressionMiddleware(CompressionConfig{
		MinSize: api.Config.GzipMinBytes,
		Level:   DefaultCompressionConfig().Level,
	})

	handler = compression(handler)
	handler = api.rateLimiter.Handler(handler)
	handler = api.WithSecurityHeaders(handler)
	return NewRequestLoggingMiddleware(api.Logger)(handler)
}

// Handler returns the API routes wrapped in the full middleware chain.
func (api *RestAPI) Handler() http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)
	return api.WithMiddleware(router)
}

// Close stops background work started by NewRestAPI.
func (api *RestAPI) Close() {
	api.rateLimiter.Stop()
}
