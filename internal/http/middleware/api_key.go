package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKey enforces a static X-API-Key header on protected endpoints.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				unauthorized(w, "api auth disabled")
				return
			}
			presented := r.Header.Get("X-API-Key")
			if presented == "" {
				unauthorized(w, "missing x-api-key header")
				return
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				unauthorized(w, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
