package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/messaging"
	"github.com/serroba/linkboard/internal/shortlink"
)

// LinkHandler serves the link CRUD surface.
type LinkHandler struct {
	links          shortlink.LinkRepository
	generate       shortlink.CodeGenerator
	publishCreated messaging.Publish[analytics.LinkCreatedEvent]
	logger         *zap.Logger
}

// NewLinkHandler builds a LinkHandler.
func NewLinkHandler(
	links shortlink.LinkRepository,
	generate shortlink.CodeGenerator,
	publishCreated messaging.Publish[analytics.LinkCreatedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		links:          links,
		generate:       generate,
		publishCreated: publishCreated,
		logger:         logger,
	}
}

// ListLinks returns every link, newest first.
func (h *LinkHandler) ListLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	links, err := h.links.List(ctx)
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list links")
	}

	body := make([]Link, 0, len(links))
	for _, link := range links {
		body = append(body, toLink(link))
	}

	return &ListLinksResponse{Body: body}, nil
}

// TopLinks returns the most-clicked links.
func (h *LinkHandler) TopLinks(ctx context.Context, req *TopLinksRequest) (*TopLinksResponse, error) {
	top, err := h.links.Top(ctx, req.Limit)
	if err != nil {
		h.logger.Error("failed to rank links", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to rank links")
	}

	return &TopLinksResponse{Body: toTopLinks(top)}, nil
}

// CreateLink stores a new link, generating a short code when the caller
// did not pick a custom slug.
func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*LinkResponse, error) {
	code := req.Body.CustomSlug

	if code == "" {
		generated, err := shortlink.GenerateUniqueCode(ctx, h.links, h.generate)
		if err != nil {
			h.logger.Error("failed to generate short code", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to generate short code")
		}

		code = generated
	}

	isActive := true
	if req.Body.IsActive != nil {
		isActive = *req.Body.IsActive
	}

	now := time.Now()
	link := &shortlink.Link{
		ID:                 uuid.NewString(),
		ShortCode:          code,
		TargetURL:          req.Body.TargetURL,
		Title:              req.Body.Title,
		CustomSlug:         req.Body.CustomSlug,
		Domain:             req.Body.Domain,
		IsActive:           isActive,
		WebhookURL:         req.Body.WebhookURL,
		EnableWebhook:      req.Body.EnableWebhook,
		ConditionalRules:   req.Body.ConditionalRules,
		EnableConditionals: req.Body.EnableConditionals,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.links.Create(ctx, link); err != nil {
		if errors.Is(err, shortlink.ErrSlugTaken) {
			return nil, huma.Error400BadRequest("custom slug is already taken")
		}

		h.logger.Error("failed to create link", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to create link")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		LinkID:    link.ID,
		ShortCode: link.ShortCode,
		Title:     link.Title,
		TargetURL: link.TargetURL,
		Domain:    link.Domain,
		CreatedAt: link.CreatedAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}
	if link.EnableWebhook {
		event.WebhookURL = link.WebhookURL
	}

	if err := h.publishCreated(ctx, event); err != nil {
		h.logger.Warn("failed to publish link created event",
			zap.String("link_id", link.ID),
			zap.Error(err))
	}

	return &LinkResponse{Body: toLink(link)}, nil
}

// GetLink fetches one link by ID.
func (h *LinkHandler) GetLink(ctx context.Context, req *GetLinkRequest) (*LinkResponse, error) {
	link, err := h.links.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("link not found")
		}

		h.logger.Error("failed to fetch link", zap.String("link_id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to fetch link")
	}

	return &LinkResponse{Body: toLink(link)}, nil
}

// UpdateLink applies a partial update; absent fields are untouched.
func (h *LinkHandler) UpdateLink(ctx context.Context, req *UpdateLinkRequest) (*LinkResponse, error) {
	update := shortlink.LinkUpdate{
		TargetURL:          req.Body.TargetURL,
		Title:              req.Body.Title,
		Domain:             req.Body.Domain,
		IsActive:           req.Body.IsActive,
		WebhookURL:         req.Body.WebhookURL,
		EnableWebhook:      req.Body.EnableWebhook,
		ConditionalRules:   req.Body.ConditionalRules,
		EnableConditionals: req.Body.EnableConditionals,
	}

	link, err := h.links.Update(ctx, req.ID, update)
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("link not found")
		}

		h.logger.Error("failed to update link", zap.String("link_id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to update link")
	}

	return &LinkResponse{Body: toLink(link)}, nil
}

// DeleteLink removes a link and its recorded clicks.
func (h *LinkHandler) DeleteLink(ctx context.Context, req *DeleteLinkRequest) (*DeleteResponse, error) {
	if err := h.links.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("link not found")
		}

		h.logger.Error("failed to delete link", zap.String("link_id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to delete link")
	}

	return &DeleteResponse{}, nil
}
