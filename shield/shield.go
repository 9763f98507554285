// Package shield holds the HTTP hardening middleware of the axsim API:
// security headers, HEAD handling and per-client rate limits.
//
// Usage:
//
//	r := chi.NewRouter()
//	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
//	r.Use(shield.HeadToGet)
//	r.Use(shield.NewRateLimiter(rules, logger).Middleware)
package shield

import "net/http"

// HeadToGet serves HEAD requests with the GET handlers. net/http drops the
// body of HEAD responses.
func HeadToGet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			r.Method = http.MethodGet
		}
		next.ServeHTTP(w, r)
	})
}
