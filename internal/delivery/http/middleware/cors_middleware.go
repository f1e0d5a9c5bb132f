package middleware

import (
	"net/http"
	"slices"
)

type CORSMiddleware struct {
	allowedOrigins []string
}

// NewCORSMiddleware allows the given origins. "*" or an empty list allows any.
func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	return &CORSMiddleware{allowedOrigins: allowedOrigins}
}

func (m *CORSMiddleware) allowOrigin(origin string) string {
	if len(m.allowedOrigins) == 0 || slices.Contains(m.allowedOrigins, "*") {
		return "*"
	}
	if slices.Contains(m.allowedOrigins, origin) {
		return origin
	}
	return ""
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if origin := m.allowOrigin(req.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, req)
	})
}
