package middleware

import (
	"net/http"

	"gaming-cafe-booking/internal/domain/entity"
	"gaming-cafe-booking/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles
// Role is read from context (set by AuthMiddleware from token claims)
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			// Check if user's role is in allowed roles
			allowed := false
			for _, role := range allowedRoles {
				if actor.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner is a convenience middleware for cafe-owner endpoints
func RequireOwner(next http.Handler) http.Handler {
	return RequireRole(entity.RoleOwner)(next)
}
