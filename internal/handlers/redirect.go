package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/messaging"
	"github.com/serroba/linkboard/internal/shortlink"
	"github.com/serroba/linkboard/internal/useragent"
)

// Paths that look like app or asset requests never resolve as short codes.
var (
	reservedPrefixes = []string{"@", "_", "src", "api", "node_modules"}
	reservedSuffixes = []string{".js", ".css", ".html", ".ico", ".png", ".svg", ".jpg", ".jpeg"}
	reservedExact    = map[string]struct{}{"favicon.ico": {}, "robots.txt": {}}
)

func isReservedPath(code string) bool {
	if _, ok := reservedExact[code]; ok {
		return true
	}

	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}

	for _, suffix := range reservedSuffixes {
		if strings.HasSuffix(code, suffix) {
			return true
		}
	}

	return false
}

func stripPort(host string) string {
	bare, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return bare
}

// RedirectHandler serves the public short-code redirect.
type RedirectHandler struct {
	links          shortlink.LinkRepository
	clicks         shortlink.ClickRepository
	publishClicked messaging.Publish[analytics.LinkClickedEvent]
	logger         *zap.Logger
}

// NewRedirectHandler builds a RedirectHandler.
func NewRedirectHandler(
	links shortlink.LinkRepository,
	clicks shortlink.ClickRepository,
	publishClicked messaging.Publish[analytics.LinkClickedEvent],
	logger *zap.Logger,
) *RedirectHandler {
	return &RedirectHandler{
		links:          links,
		clicks:         clicks,
		publishClicked: publishClicked,
		logger:         logger,
	}
}

// Redirect resolves a short code, records the click and issues a 302.
// Recording is best effort: a storage failure is logged and the visitor
// is still redirected.
func (h *RedirectHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	if isReservedPath(req.Code) {
		return nil, huma.Error404NotFound("link not found")
	}

	meta := RequestMetaFromContext(ctx)

	link, err := h.resolve(ctx, req.Code, stripPort(meta.Host))
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("link not found")
		}

		h.logger.Error("failed to resolve short code", zap.String("short_code", req.Code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to resolve link")
	}

	if !link.IsActive {
		return nil, huma.Error404NotFound("link not found")
	}

	h.recordClick(ctx, link, meta)

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = h.target(link, meta.UserAgent)

	return resp, nil
}

// resolve prefers a domain-scoped match for the request host and falls
// back to a plain short-code lookup.
func (h *RedirectHandler) resolve(ctx context.Context, code, domain string) (*shortlink.Link, error) {
	if domain != "" {
		link, err := h.links.GetByShortCodeAndDomain(ctx, code, domain)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, shortlink.ErrNotFound) {
			return nil, err
		}
	}

	return h.links.GetByShortCode(ctx, code)
}

func (h *RedirectHandler) recordClick(ctx context.Context, link *shortlink.Link, meta RequestMeta) {
	click := &shortlink.Click{
		ID:        uuid.NewString(),
		LinkID:    link.ID,
		IPAddress: meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
		Device:    useragent.Device(meta.UserAgent),
		Browser:   useragent.Browser(meta.UserAgent),
		OS:        useragent.OS(meta.UserAgent),
		ClickedAt: time.Now(),
	}

	if err := h.clicks.Record(ctx, click); err != nil {
		h.logger.Error("failed to record click",
			zap.String("link_id", link.ID),
			zap.Error(err))
	}

	event := &analytics.LinkClickedEvent{
		LinkID:    link.ID,
		ShortCode: link.ShortCode,
		Title:     link.Title,
		TargetURL: link.TargetURL,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
		ClickedAt: click.ClickedAt,
	}
	if link.EnableWebhook {
		event.WebhookURL = link.WebhookURL
	}

	if err := h.publishClicked(ctx, event); err != nil {
		h.logger.Warn("failed to publish click event",
			zap.String("link_id", link.ID),
			zap.Error(err))
	}
}

// target picks the destination, honoring device-conditional rules when
// enabled. A rule with an empty URL falls through to the default target.
func (h *RedirectHandler) target(link *shortlink.Link, ua string) string {
	if !link.EnableConditionals || link.ConditionalRules == nil {
		return link.TargetURL
	}

	if useragent.IsMobile(ua) {
		if link.ConditionalRules.Mobile != "" {
			return link.ConditionalRules.Mobile
		}
	} else if link.ConditionalRules.Desktop != "" {
		return link.ConditionalRules.Desktop
	}

	return link.TargetURL
}
