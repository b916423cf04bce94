package restapi

import (
	"net/http"
	"strings"

	"github.com/unrolled/secure"
)

const (
	apiContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"
	uiContentSecurityPolicy  = "default-src 'self'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"
)

// WithSecurityHeaders wraps handler with security headers and CORS handling
// for the JSON API.
func (api *RestAPI) WithSecurityHeaders(handler http.Handler) http.Handler {
	return securityHeaders(api.Config.IsProduction(), api.Config.AllowsOrigin)(handler)
}

func newSecure(production bool, csp string) *secure.Secure {
	return secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: csp,
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})
}

func securityHeaders(production bool, allowOrigin func(string) bool) func(http.Handler) http.Handler {
	apiSecure := newSecure(production, apiContentSecurityPolicy)
	uiSecure := newSecure(production, uiContentSecurityPolicy)

	return func(next http.Handler) http.Handler {
		apiHandler := apiSecure.Handler(next)
		uiHandler := uiSecure.Handler(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				uiHandler.ServeHTTP(w, r)
				return
			}

			if origin := r.Header.Get("Origin"); origin != "" && allowOrigin(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}
			if r.Method == http.MethodOptions {
				_ = apiSecure.Process(w, r)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			apiHandler.ServeHTTP(w, r)
		})
	}
}
