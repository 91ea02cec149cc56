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

// DomainHandler serves the custom domain surface. Domains are registered
// with a generated verification record; verification itself happens out
// of band, so there is no update or delete.
type DomainHandler struct {
	domains shortlink.DomainRepository
	logger  *zap.Logger
}

// NewDomainHandler builds a DomainHandler.
func NewDomainHandler(domains shortlink.DomainRepository, logger *zap.Logger) *DomainHandler {
	return &DomainHandler{domains: domains, logger: logger}
}

// ListDomains returns every registered custom domain.
func (h *DomainHandler) ListDomains(ctx context.Context, _ *struct{}) (*ListDomainsResponse, error) {
	domains, err := h.domains.List(ctx)
	if err != nil {
		h.logger.Error("failed to list domains", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list domains")
	}

	body := make([]CustomDomain, 0, len(domains))
	for _, domain := range domains {
		body = append(body, toDomain(domain))
	}

	return &ListDomainsResponse{Body: body}, nil
}

// CreateDomain registers a custom domain as unverified and hands back the
// DNS record value the owner must publish.
func (h *DomainHandler) CreateDomain(ctx context.Context, req *CreateDomainRequest) (*DomainResponse, error) {
	record, err := verificationRecord()
	if err != nil {
		h.logger.Error("failed to generate verification record", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to register domain")
	}

	domain := &shortlink.CustomDomain{
		ID:                 uuid.NewString(),
		Domain:             req.Body.Domain,
		IsVerified:         false,
		VerificationMethod: req.Body.VerificationMethod,
		VerificationRecord: record,
		CreatedAt:          time.Now(),
	}

	if err := h.domains.Create(ctx, domain); err != nil {
		if errors.Is(err, shortlink.ErrDomainTaken) {
			return nil, huma.Error400BadRequest("domain is already registered")
		}

		h.logger.Error("failed to register domain", zap.String("domain", req.Body.Domain), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to register domain")
	}

	return &DomainResponse{Body: toDomain(domain)}, nil
}

func verificationRecord() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return "linkboard-verify-" + hex.EncodeToString(buf), nil
}
