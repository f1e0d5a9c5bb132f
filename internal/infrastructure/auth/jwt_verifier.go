package auth

import (
	"context"

	"gaming-cafe-booking/internal/domain/entity"
	"gaming-cafe-booking/pkg/jwt"
)

// JWTVerifier accepts HS256 tokens signed with the shared secret
type JWTVerifier struct {
	jwtService *jwt.JWTService
}

func NewJWTVerifier(jwtService *jwt.JWTService) *JWTVerifier {
	return &JWTVerifier{jwtService: jwtService}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (entity.Actor, error) {
	claims, err := v.jwtService.ValidateToken(token)
	if err != nil {
		return entity.Actor{}, err
	}

	role := claims.Role
	if role == "" {
		role = entity.RoleClient
	}

	return entity.Actor{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
