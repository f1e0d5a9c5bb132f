package middleware

import (
	"context"
	"net/http"
	"strings"

	"gaming-cafe-booking/internal/domain/entity"
	"gaming-cafe-booking/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	ActorKey contextKey = "actor"
)

// TokenVerifier checks a bearer token with the identity provider and
// returns the caller it was issued to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (entity.Actor, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	log      *logrus.Logger
}

func NewAuthMiddleware(verifier TokenVerifier, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		log:      log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		actor, err := m.verifier.Verify(r.Context(), parts[1])
		if err != nil {
			m.log.Debugf("Rejected bearer token: %+v", err)
			response.Unauthorized(w, "Invalid or expired token")
			return
		}
		if actor.UserID == "" || !entity.ValidRole(actor.Role) {
			response.Unauthorized(w, "Token does not carry a usable identity")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor stores the authenticated caller in ctx
func WithActor(ctx context.Context, actor entity.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// GetActorFromContext extracts the authenticated caller from context
func GetActorFromContext(ctx context.Context) (entity.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(entity.Actor)
	return actor, ok
}
