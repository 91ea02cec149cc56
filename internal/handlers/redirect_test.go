package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/handlers"
	"github.com/serroba/linkboard/internal/shortlink"
	"github.com/serroba/linkboard/internal/store"
)

const mobileUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Safari/604.1"

// failingClicks rejects every Record call.
type failingClicks struct {
	shortlink.ClickRepository
}

func (failingClicks) Record(context.Context, *shortlink.Click) error {
	return errors.New("clicks table unavailable")
}

func newRedirectHandler(mem *store.Memory) *handlers.RedirectHandler {
	return handlers.NewRedirectHandler(
		mem.Links(),
		mem.Clicks(),
		noopPublish[analytics.LinkClickedEvent](),
		zap.NewNop(),
	)
}

func TestRedirect(t *testing.T) {
	ctx := context.Background()

	t.Run("redirects with 302 to the target", func(t *testing.T) {
		mem := store.NewMemory()
		seedLink(t, mem, &shortlink.Link{ID: "id-1", ShortCode: "abc12345", TargetURL: testTarget, IsActive: true})
		handler := newRedirectHandler(mem)

		resp, err := handler.Redirect(ctx, &handlers.RedirectRequest{Code: "abc12345"})

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)
		assert.Equal(t, testTarget, resp.Headers.Location)
	})

	t.Run("unknown code yields 404", func(t *testing.T) {
		handler := newRedirectHandler(store.NewMemory())

		resp, err := handler.Redirect(ctx, &handlers.RedirectRequest{Code: "missing1"})

		assert.Nil(t, resp)
		assert.Error(t, err)
	})

	t.Run("inactive link yields 404", func(t *testing.T) {
		mem := store.NewMemory()
		seedLink(t, mem, &shortlink.Link{ID: "id-1", ShortCode: "abc12345", TargetURL: testTarget, IsActive: false})
		handler := newRedirectHandler(mem)

		_, err := handler.Redirect(ctx, &handlers.RedirectRequest{Code: "abc12345"})

		assert.Error(t, err)
	})

	t.Run("reserved and asset-like paths yield 404 without lookup", func(t *testing.T) {
		handler := newRedirectHandler(store.NewMemory())

		for _, code := range []string{
			"favicon.ico", "robots.txt", "app.js", "style.css", "logo.png",
			"@vite", "_app", "src", "srcdocs", "api", "apitest", "node_modules",
		} {
			_, err := handler.Redirect(ctx, &handlers.RedirectRequest{Code: code})
			assert.Error(t, err, "expected 404 for %q", code)
		}
	})

	t.Run("reserved prefixes block matching custom slugs", func(t *testing.T) {
		mem := store.NewMemory()
		seedLink(t, mem, &shortlink.Link{ID: "id-1", ShortCode: "apitest", TargetURL: testTarget, IsActive: true})
		handler := newRedirectHandler(mem)

		_, err := handler.Redirect(ctx, &handlers.RedirectRequest{Code: "apitest"})

		assert.Error(t, err)
	})

	t.Run("records exactly one click with derived tags", func(t *testing.T) {
		mem := store.NewMemory()
		seedLink(t, mem, &shortlink.Link{ID: "id-1", ShortCode: "abc12345", TargetURL: testTarget, IsActive: true})
		handler := newRedirectHandler(mem)

		meta := handlers.RequestMeta{
			ClientIP:  "1.1.1.1",
			UserAgent: mobileUA,
			Referer:   "https://referrer.example.com",
		}
		metaCtx := handlers.ContextWithRequestMeta(ctx, meta)

		_, err := handler.Redirect(metaCtx, &handlers.RedirectRequest{Code: "abc12345"})
		require.NoError(t, err)

		clicks, err := mem.Clicks().List(ctx, shortlink.ClickFilter{LinkID: "id-1"})
		require.NoError(t, err)
		require.Len(t, clicks, 1)
		assert.Equal(t, "1.1.1.1", clicks[0].IPAddress)
		assert.Equal(t, "Mobile", clicks[0].Device)
		assert.Equal(t, "Safari", clicks[0].Browser)
	})

	t.Run("redirect proceeds when click recording fails", func(t *testing.T) {
		mem := store.NewMemory()
		seedLink(t, mem, &shortlink.Link{ID: "id-1", ShortCode: "abc12345", TargetURL: testTarget, IsActive: true})

		handler := handlers.NewRedirectHandler(
			mem.Links(),
			failingClicks{},
			noopPublish[analytics.LinkClickedEvent](),
			zap.NewNop(),
		)

		resp, err := handler.Redirect(ctx, &handlers.RedirectRequest{Code: "abc12345"})

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)
	})

	t.Run("publishes click event with webhook url only when enabled", func(t *testing.T) {
		mem := store.NewMemory()
		seedLink(t, mem, &shortlink.Link{
			ID: "id-1", ShortCode: "abc12345", TargetURL: testTarget, IsActive: true,
			WebhookURL: "https://hooks.example.com", EnableWebhook: true,
		})
		seedLink(t, mem, &shortlink.Link{
			ID: "id-2", ShortCode: "def67890", TargetURL: testTarget, IsActive: true,
			WebhookURL: "https://hooks.example.com",
		})

		var events []*analytics.LinkClickedEvent

		handler := handlers.NewRedirectHandler(mem.Links(), mem.Clicks(), capturePublish(&events), zap.NewNop())

		_, err := handler.Redirect(ctx, &handlers.RedirectRequest{Code: "abc12345"})
		require.NoError(t, err)

		_, err = handler.Redirect(ctx, &handlers.RedirectRequest{Code: "def67890"})
		require.NoError(t, err)

		require.Len(t, events, 2)
		assert.Equal(t, "https://hooks.example.com", events[0].WebhookURL)
		assert.Empty(t, events[1].WebhookURL)
	})

	t.Run("succeeds even when publish fails", func(t *testing.T) {
		mem := store.NewMemory()
		seedLink(t, mem, &shortlink.Link{ID: "id-1", ShortCode: "abc12345", TargetURL: testTarget, IsActive: true})

		handler := handlers.NewRedirectHandler(
			mem.Links(),
			mem.Clicks(),
			errorPublish[analytics.LinkClickedEvent](errors.New("publish error")),
			zap.NewNop(),
		)

		resp, err := handler.Redirect(ctx, &handlers.RedirectRequest{Code: "abc12345"})

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)
	})
}

func TestRedirectDomainResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers the domain scoped link for the request host", func(t *testing.T) {
		mem := store.NewMemory()
		seedLink(t, mem, &shortlink.Link{ID: "id-global", ShortCode: "abc12345", TargetURL: "https://global.example.com", IsActive: true})
		seedLink(t, mem, &shortlink.Link{
			ID: "id-scoped", ShortCode: "abc12345x", TargetURL: "https://scoped.example.com",
			Domain: "go.example.com", IsActive: true,
		})
		handler := newRedirectHandler(mem)

		meta := handlers.RequestMeta{Host: "go.example.com:8888"}
		metaCtx := handlers.ContextWithRequestMeta(ctx, meta)

		resp, err := handler.Redirect(metaCtx, &handlers.RedirectRequest{Code: "abc12345x"})

		require.NoError(t, err)
		assert.Equal(t, "https://scoped.example.com", resp.Headers.Location)
	})

	t.Run("falls back to code-only lookup for unmatched hosts", func(t *testing.T) {
		mem := store.NewMemory()
		seedLink(t, mem, &shortlink.Link{ID: "id-global", ShortCode: "abc12345", TargetURL: "https://global.example.com", IsActive: true})
		handler := newRedirectHandler(mem)

		meta := handlers.RequestMeta{Host: "other.example.com"}
		metaCtx := handlers.ContextWithRequestMeta(ctx, meta)

		resp, err := handler.Redirect(metaCtx, &handlers.RedirectRequest{Code: "abc12345"})

		require.NoError(t, err)
		assert.Equal(t, "https://global.example.com", resp.Headers.Location)
	})
}

func TestRedirectConditionalRules(t *testing.T) {
	ctx := context.Background()

	seedConditional := func(t *testing.T, mem *store.Memory, rules *shortlink.ConditionalRules, enabled bool) {
		t.Helper()

		seedLink(t, mem, &shortlink.Link{
			ID:                 "id-1",
			ShortCode:          "abc12345",
			TargetURL:          testTarget,
			IsActive:           true,
			ConditionalRules:   rules,
			EnableConditionals: enabled,
			CreatedAt:          time.Now(),
		})
	}

	redirect := func(t *testing.T, mem *store.Memory, ua string) string {
		t.Helper()

		handler := newRedirectHandler(mem)
		metaCtx := handlers.ContextWithRequestMeta(ctx, handlers.RequestMeta{UserAgent: ua})

		resp, err := handler.Redirect(metaCtx, &handlers.RedirectRequest{Code: "abc12345"})
		require.NoError(t, err)

		return resp.Headers.Location
	}

	t.Run("mobile user agent follows the mobile rule", func(t *testing.T) {
		mem := store.NewMemory()
		seedConditional(t, mem, &shortlink.ConditionalRules{Mobile: "https://m.example.com"}, true)

		assert.Equal(t, "https://m.example.com", redirect(t, mem, mobileUA))
	})

	t.Run("desktop user agent follows the desktop rule", func(t *testing.T) {
		mem := store.NewMemory()
		seedConditional(t, mem, &shortlink.ConditionalRules{Desktop: "https://d.example.com"}, true)

		assert.Equal(t, "https://d.example.com", redirect(t, mem, "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0"))
	})

	t.Run("missing matching rule falls back to the target", func(t *testing.T) {
		mem := store.NewMemory()
		seedConditional(t, mem, &shortlink.ConditionalRules{Desktop: "https://d.example.com"}, true)

		assert.Equal(t, testTarget, redirect(t, mem, mobileUA))
	})

	t.Run("disabled rules are ignored", func(t *testing.T) {
		mem := store.NewMemory()
		seedConditional(t, mem, &shortlink.ConditionalRules{Mobile: "https://m.example.com"}, false)

		assert.Equal(t, testTarget, redirect(t, mem, mobileUA))
	})
}
