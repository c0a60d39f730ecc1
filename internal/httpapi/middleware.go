package httpapi

import (
	"net/http"
	"strings"

	"github.com/leofalp/parliament/internal/config"
)

// enableCORS adds CORS headers to responses and answers preflight requests.
// Allowed origins come from ALLOWED_ORIGINS (comma separated); local dev
// frontends are always allowed.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	if origin == "http://localhost:5173" || origin == "http://localhost:3000" {
		return true
	}
	for _, allowed := range strings.Split(config.GetAllowedOrigins(), ",") {
		if origin == strings.TrimSpace(allowed) && allowed != "" {
			return true
		}
	}
	return false
}
