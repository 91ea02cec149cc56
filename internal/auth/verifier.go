// Package auth verifies bearer credentials for the API surface. Two kinds of
// credentials are accepted: identity-provider session tokens (JWTs signed
// with the provider's key) and opaque API tokens issued through the token
// endpoints.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/serroba/linkboard/internal/shortlink"
)

// ErrInvalidCredential is returned when a credential cannot be verified.
var ErrInvalidCredential = errors.New("invalid credential")

// MetadataPublic marks an operation as unauthenticated in its route
// metadata. The redirect entrypoint and health check are the only public
// routes.
const MetadataPublic = "public"

// Identity is the verified caller of an API request.
type Identity struct {
	UserID    string
	SessionID string
}

// Verifier validates a bearer credential and yields the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

type identityKey struct{}

// ContextWithIdentity attaches a verified identity to the context.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext extracts the verified identity, if any.
func IdentityFromContext(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return v
	}

	return nil
}

// SessionVerifier validates identity-provider session tokens. The external
// service's signing key is all that is needed locally; no network call.
type SessionVerifier struct {
	secret []byte
}

// NewSessionVerifier creates a verifier for session JWTs signed with the
// given secret.
func NewSessionVerifier(secret string) *SessionVerifier {
	return &SessionVerifier{secret: []byte(secret)}
}

func (v *SessionVerifier) Verify(_ context.Context, credential string) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, ErrInvalidCredential
	}

	token, err := jwt.Parse(credential, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredential
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidCredential
	}

	sid, _ := claims["sid"].(string)

	return &Identity{UserID: sub, SessionID: sid}, nil
}

// TokenVerifier validates opaque API tokens against the token store.
type TokenVerifier struct {
	tokens shortlink.TokenRepository
}

// NewTokenVerifier creates a verifier backed by the API token store.
func NewTokenVerifier(tokens shortlink.TokenRepository) *TokenVerifier {
	return &TokenVerifier{tokens: tokens}
}

func (v *TokenVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	token, err := v.tokens.GetByToken(ctx, credential)
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, ErrInvalidCredential
		}

		return nil, err
	}

	if !token.IsActive {
		return nil, ErrInvalidCredential
	}

	return &Identity{UserID: "token:" + token.ID}, nil
}

// ChainVerifier tries each verifier in order; the first success wins.
type ChainVerifier []Verifier

func (c ChainVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	for _, verifier := range c {
		identity, err := verifier.Verify(ctx, credential)
		if err == nil {
			return identity, nil
		}

		if !errors.Is(err, ErrInvalidCredential) {
			return nil, err
		}
	}

	return nil, ErrInvalidCredential
}
