// Package webhook delivers outbound notification POSTs for link events.
// Delivery is best-effort: one attempt per target with a bounded timeout,
// failures are logged and never escalated.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/shortlink"
	"go.uber.org/zap"
)

const (
	deliveryTimeout = 10 * time.Second
	userAgent       = "Linkboard-Webhook/1.0"
)

// LinkPayload identifies the link an event refers to.
type LinkPayload struct {
	ID        string     `json:"id"`
	ShortCode string     `json:"shortCode"`
	Title     string     `json:"title"`
	TargetURL string     `json:"targetUrl"`
	Domain    string     `json:"domain,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// CreatorPayload carries request metadata of the link creator.
type CreatorPayload struct {
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Timestamp time.Time `json:"timestamp"`
}

// ClickPayload carries request metadata of a recorded click.
type ClickPayload struct {
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Referer   string    `json:"referer"`
	Timestamp time.Time `json:"timestamp"`
}

// Payload is the JSON body posted to webhook targets.
type Payload struct {
	Event     string          `json:"event"`
	Link      LinkPayload     `json:"link"`
	Creator   *CreatorPayload `json:"creator,omitempty"`
	Click     *ClickPayload   `json:"click,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Dispatcher fans an event out to its webhook targets: the link's inline
// webhook URL plus any registry webhooks subscribed to the event, with
// targets deduplicated by URL so no endpoint is hit twice per event.
type Dispatcher struct {
	client   *http.Client
	registry shortlink.WebhookRepository
	logger   *zap.Logger
}

// NewDispatcher creates a new webhook dispatcher.
func NewDispatcher(registry shortlink.WebhookRepository, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		client:   &http.Client{Timeout: deliveryTimeout},
		registry: registry,
		logger:   logger,
	}
}

// LinkCreated delivers the link_created event. The returned error is always
// nil; delivery problems are logged only.
func (d *Dispatcher) LinkCreated(ctx context.Context, event *analytics.LinkCreatedEvent) error {
	createdAt := event.CreatedAt
	payload := &Payload{
		Event: shortlink.EventLinkCreated,
		Link: LinkPayload{
			ID:        event.LinkID,
			ShortCode: event.ShortCode,
			Title:     event.Title,
			TargetURL: event.TargetURL,
			Domain:    event.Domain,
			CreatedAt: &createdAt,
		},
		Creator: &CreatorPayload{
			IPAddress: event.ClientIP,
			UserAgent: event.UserAgent,
			Timestamp: event.CreatedAt,
		},
		Timestamp: time.Now(),
	}

	d.dispatch(ctx, shortlink.EventLinkCreated, event.WebhookURL, payload)

	return nil
}

// LinkClicked delivers the click event. The returned error is always nil;
// delivery problems are logged only.
func (d *Dispatcher) LinkClicked(ctx context.Context, event *analytics.LinkClickedEvent) error {
	payload := &Payload{
		Event: shortlink.EventClick,
		Link: LinkPayload{
			ID:        event.LinkID,
			ShortCode: event.ShortCode,
			Title:     event.Title,
			TargetURL: event.TargetURL,
		},
		Click: &ClickPayload{
			IPAddress: event.ClientIP,
			UserAgent: event.UserAgent,
			Referer:   event.Referer,
			Timestamp: event.ClickedAt,
		},
		Timestamp: time.Now(),
	}

	d.dispatch(ctx, shortlink.EventClick, event.WebhookURL, payload)

	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, event, inlineURL string, payload *Payload) {
	targets := d.targets(ctx, event, inlineURL)

	for _, url := range targets {
		d.post(ctx, url, payload)
	}
}

// targets merges the inline URL with subscribed registry webhooks,
// deduplicated by URL.
func (d *Dispatcher) targets(ctx context.Context, event, inlineURL string) []string {
	seen := make(map[string]struct{})
	targets := make([]string, 0, 1)

	if inlineURL != "" {
		seen[inlineURL] = struct{}{}
		targets = append(targets, inlineURL)
	}

	subscribed, err := d.registry.ListActiveForEvent(ctx, event)
	if err != nil {
		d.logger.Error("failed to list registry webhooks",
			zap.String("event", event),
			zap.Error(err),
		)

		return targets
	}

	for _, webhook := range subscribed {
		if _, ok := seen[webhook.URL]; ok {
			continue
		}

		seen[webhook.URL] = struct{}{}
		targets = append(targets, webhook.URL)
	}

	return targets
}

func (d *Dispatcher) post(ctx context.Context, url string, payload *Payload) {
	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("failed to encode webhook payload", zap.Error(err))

		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		d.logger.Error("failed to build webhook request",
			zap.String("url", url),
			zap.Error(err),
		)

		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("webhook delivery failed",
			zap.String("url", url),
			zap.String("event", payload.Event),
			zap.Error(err),
		)

		return
	}

	defer func() { _ = resp.Body.Close() }()

	d.logger.Info("webhook delivered",
		zap.String("url", url),
		zap.String("event", payload.Event),
		zap.Int("status", resp.StatusCode),
	)
}
