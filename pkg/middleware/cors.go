package middleware

import (
	"net/http"
	"strings"
)

// CORS lets browser tooling on any of origins call the mock API. "*" allows
// every origin.
func CORS(origins ...string) func(http.Handler) http.Handler {
	const (
		methods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
		headers = "Accept, Authorization, Content-Type, X-Request-ID"
	)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			for _, o := range origins {
				if o == "*" || strings.EqualFold(o, origin) {
					w.Header().Set("Access-Control-Allow-Origin", o)
					w.Header().Set("Access-Control-Allow-Methods", methods)
					w.Header().Set("Access-Control-Allow-Headers", headers)
					break
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
