package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/serroba/linkboard/internal/shortlink"
)

// WebhookHandler serves the webhook registry CRUD surface.
type WebhookHandler struct {
	webhooks shortlink.WebhookRepository
	logger   *zap.Logger
}

// NewWebhookHandler builds a WebhookHandler.
func NewWebhookHandler(webhooks shortlink.WebhookRepository, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, logger: logger}
}

// ListWebhooks returns every registered webhook.
func (h *WebhookHandler) ListWebhooks(ctx context.Context, _ *struct{}) (*ListWebhooksResponse, error) {
	webhooks, err := h.webhooks.List(ctx)
	if err != nil {
		h.logger.Error("failed to list webhooks", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list webhooks")
	}

	body := make([]Webhook, 0, len(webhooks))
	for _, webhook := range webhooks {
		body = append(body, toWebhook(webhook))
	}

	return &ListWebhooksResponse{Body: body}, nil
}

// CreateWebhook registers a webhook.
func (h *WebhookHandler) CreateWebhook(ctx context.Context, req *CreateWebhookRequest) (*WebhookResponse, error) {
	isActive := true
	if req.Body.IsActive != nil {
		isActive = *req.Body.IsActive
	}

	webhook := &shortlink.Webhook{
		ID:        uuid.NewString(),
		Name:      req.Body.Name,
		URL:       req.Body.URL,
		IsActive:  isActive,
		Events:    req.Body.Events,
		CreatedAt: time.Now(),
	}

	if err := h.webhooks.Create(ctx, webhook); err != nil {
		h.logger.Error("failed to create webhook", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to create webhook")
	}

	return &WebhookResponse{Body: toWebhook(webhook)}, nil
}

// UpdateWebhook applies a partial update; absent fields are untouched.
func (h *WebhookHandler) UpdateWebhook(ctx context.Context, req *UpdateWebhookRequest) (*WebhookResponse, error) {
	update := shortlink.WebhookUpdate{
		Name:     req.Body.Name,
		URL:      req.Body.URL,
		IsActive: req.Body.IsActive,
		Events:   req.Body.Events,
	}

	webhook, err := h.webhooks.Update(ctx, req.ID, update)
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("webhook not found")
		}

		h.logger.Error("failed to update webhook", zap.String("webhook_id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to update webhook")
	}

	return &WebhookResponse{Body: toWebhook(webhook)}, nil
}

// DeleteWebhook removes a webhook from the registry.
func (h *WebhookHandler) DeleteWebhook(ctx context.Context, req *DeleteWebhookRequest) (*DeleteResponse, error) {
	if err := h.webhooks.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("webhook not found")
		}

		h.logger.Error("failed to delete webhook", zap.String("webhook_id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to delete webhook")
	}

	return &DeleteResponse{}, nil
}
