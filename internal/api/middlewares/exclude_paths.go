package middlewares

import (
	"net/http"
	"strings"
)

type Middleware func(http.Handler) http.Handler

// MiddlewaresExcludePaths applies a middleware to every route except the
// given path prefixes (public endpoints like login and webhooks).
func MiddlewaresExcludePaths(middleware Middleware, excluded ...string) Middleware {
	return func(next http.Handler) http.Handler {
		wrapped := middleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range excluded {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
