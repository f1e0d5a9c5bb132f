package auth

import (
	"context"
	"fmt"

	"gaming-cafe-booking/internal/domain/entity"

	firebase "firebase.google.com/go/v4"
	firebaseAuth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// RoleClaim is the Firebase custom claim carrying the booking role
const RoleClaim = "role"

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseAuth.Token, error)
}

// FirebaseVerifier accepts Firebase ID tokens. Owners are marked with the
// custom claim role=owner; everyone else is a client.
type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase auth: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (entity.Actor, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return entity.Actor{}, err
	}
	return actorFromFirebaseToken(decoded), nil
}

func actorFromFirebaseToken(token *firebaseAuth.Token) entity.Actor {
	actor := entity.Actor{
		UserID: token.UID,
		Role:   entity.RoleClient,
	}
	if email, ok := token.Claims["email"].(string); ok {
		actor.Email = email
	}
	if role, ok := token.Claims[RoleClaim].(string); ok && entity.ValidRole(role) {
		actor.Role = role
	}
	return actor
}
