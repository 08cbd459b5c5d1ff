package apikey

import (
	"crypto/subtle"
	"net/http"
)

const headerName = "X-Api-Key"

// Require guards administrative endpoints with a shared API key. The
// webhook endpoint stays outside this middleware: channel identity is its
// only access control.
func Require(key string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(headerName)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
