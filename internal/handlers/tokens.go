package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/serroba/linkboard/internal/shortlink"
)

// TokenHandler serves the API token surface. The opaque token value is
// returned in full exactly once, in the create response.
type TokenHandler struct {
	tokens shortlink.TokenRepository
	logger *zap.Logger
}

// NewTokenHandler builds a TokenHandler.
func NewTokenHandler(tokens shortlink.TokenRepository, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{tokens: tokens, logger: logger}
}

// ListTokens returns every issued token.
func (h *TokenHandler) ListTokens(ctx context.Context, _ *struct{}) (*ListTokensResponse, error) {
	tokens, err := h.tokens.List(ctx)
	if err != nil {
		h.logger.Error("failed to list tokens", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list tokens")
	}

	body := make([]APIToken, 0, len(tokens))
	for _, token := range tokens {
		body = append(body, toToken(token))
	}

	return &ListTokensResponse{Body: body}, nil
}

// CreateToken issues a new opaque API token.
func (h *TokenHandler) CreateToken(ctx context.Context, req *CreateTokenRequest) (*TokenResponse, error) {
	value, err := tokenValue()
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to create token")
	}

	token := &shortlink.APIToken{
		ID:        uuid.NewString(),
		Name:      req.Body.Name,
		Token:     value,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	if err := h.tokens.Create(ctx, token); err != nil {
		h.logger.Error("failed to create token", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to create token")
	}

	return &TokenResponse{Body: toToken(token)}, nil
}

// DeleteToken revokes a token.
func (h *TokenHandler) DeleteToken(ctx context.Context, req *DeleteTokenRequest) (*DeleteResponse, error) {
	if err := h.tokens.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("token not found")
		}

		h.logger.Error("failed to delete token", zap.String("token_id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to delete token")
	}

	return &DeleteResponse{}, nil
}

func tokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
