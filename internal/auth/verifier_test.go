package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serroba/linkboard/internal/auth"
	"github.com/serroba/linkboard/internal/shortlink"
	"github.com/serroba/linkboard/internal/store"
)

const testSecret = "test-signing-secret"

func signSession(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func TestSessionVerifier(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts a valid session token", func(t *testing.T) {
		verifier := auth.NewSessionVerifier(testSecret)
		credential := signSession(t, testSecret, jwt.MapClaims{
			"sub": "user-1",
			"sid": "sess-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		identity, err := verifier.Verify(ctx, credential)

		require.NoError(t, err)
		assert.Equal(t, "user-1", identity.UserID)
		assert.Equal(t, "sess-1", identity.SessionID)
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		verifier := auth.NewSessionVerifier(testSecret)
		credential := signSession(t, "other-secret", jwt.MapClaims{"sub": "user-1"})

		_, err := verifier.Verify(ctx, credential)

		assert.ErrorIs(t, err, auth.ErrInvalidCredential)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		verifier := auth.NewSessionVerifier(testSecret)
		credential := signSession(t, testSecret, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		_, err := verifier.Verify(ctx, credential)

		assert.ErrorIs(t, err, auth.ErrInvalidCredential)
	})

	t.Run("rejects a token without a subject", func(t *testing.T) {
		verifier := auth.NewSessionVerifier(testSecret)
		credential := signSession(t, testSecret, jwt.MapClaims{"sid": "sess-1"})

		_, err := verifier.Verify(ctx, credential)

		assert.ErrorIs(t, err, auth.ErrInvalidCredential)
	})

	t.Run("rejects everything when no secret is configured", func(t *testing.T) {
		verifier := auth.NewSessionVerifier("")
		credential := signSession(t, testSecret, jwt.MapClaims{"sub": "user-1"})

		_, err := verifier.Verify(ctx, credential)

		assert.ErrorIs(t, err, auth.ErrInvalidCredential)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		verifier := auth.NewSessionVerifier(testSecret)

		_, err := verifier.Verify(ctx, "not-a-jwt")

		assert.ErrorIs(t, err, auth.ErrInvalidCredential)
	})
}

func TestTokenVerifier(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts an active stored token", func(t *testing.T) {
		mem := store.NewMemory()
		require.NoError(t, mem.Tokens().Create(ctx, &shortlink.APIToken{
			ID: "t-1", Name: "ci", Token: "opaque-value", IsActive: true,
		}))

		verifier := auth.NewTokenVerifier(mem.Tokens())

		identity, err := verifier.Verify(ctx, "opaque-value")

		require.NoError(t, err)
		assert.Equal(t, "token:t-1", identity.UserID)
	})

	t.Run("rejects an inactive token", func(t *testing.T) {
		mem := store.NewMemory()
		require.NoError(t, mem.Tokens().Create(ctx, &shortlink.APIToken{
			ID: "t-1", Token: "opaque-value", IsActive: false,
		}))

		verifier := auth.NewTokenVerifier(mem.Tokens())

		_, err := verifier.Verify(ctx, "opaque-value")

		assert.ErrorIs(t, err, auth.ErrInvalidCredential)
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		verifier := auth.NewTokenVerifier(store.NewMemory().Tokens())

		_, err := verifier.Verify(ctx, "nope")

		assert.ErrorIs(t, err, auth.ErrInvalidCredential)
	})
}

type stubVerifier struct {
	identity *auth.Identity
	err      error
}

func (s *stubVerifier) Verify(context.Context, string) (*auth.Identity, error) {
	return s.identity, s.err
}

func TestChainVerifier(t *testing.T) {
	ctx := context.Background()

	t.Run("first success wins", func(t *testing.T) {
		chain := auth.ChainVerifier{
			&stubVerifier{err: auth.ErrInvalidCredential},
			&stubVerifier{identity: &auth.Identity{UserID: "user-2"}},
		}

		identity, err := chain.Verify(ctx, "cred")

		require.NoError(t, err)
		assert.Equal(t, "user-2", identity.UserID)
	})

	t.Run("all invalid yields invalid credential", func(t *testing.T) {
		chain := auth.ChainVerifier{
			&stubVerifier{err: auth.ErrInvalidCredential},
			&stubVerifier{err: auth.ErrInvalidCredential},
		}

		_, err := chain.Verify(ctx, "cred")

		assert.ErrorIs(t, err, auth.ErrInvalidCredential)
	})

	t.Run("unexpected errors stop the chain", func(t *testing.T) {
		boom := errors.New("store down")
		chain := auth.ChainVerifier{
			&stubVerifier{err: boom},
			&stubVerifier{identity: &auth.Identity{UserID: "never"}},
		}

		_, err := chain.Verify(ctx, "cred")

		assert.ErrorIs(t, err, boom)
	})
}

func TestIdentityContext(t *testing.T) {
	t.Run("round trips through context", func(t *testing.T) {
		identity := &auth.Identity{UserID: "user-1"}
		ctx := auth.ContextWithIdentity(context.Background(), identity)

		assert.Equal(t, identity, auth.IdentityFromContext(ctx))
	})

	t.Run("missing identity is nil", func(t *testing.T) {
		assert.Nil(t, auth.IdentityFromContext(context.Background()))
	})
}
