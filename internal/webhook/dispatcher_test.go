package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/shortlink"
	"github.com/serroba/linkboard/internal/store"
	"github.com/serroba/linkboard/internal/webhook"
)

type capture struct {
	mu       sync.Mutex
	payloads []webhook.Payload
	agents   []string
}

func (c *capture) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload webhook.Payload
		_ = json.NewDecoder(r.Body).Decode(&payload)

		c.mu.Lock()
		c.payloads = append(c.payloads, payload)
		c.agents = append(c.agents, r.Header.Get("User-Agent"))
		c.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.payloads)
}

func TestDispatcherLinkClicked(t *testing.T) {
	ctx := context.Background()

	t.Run("posts click payload to inline url", func(t *testing.T) {
		received := &capture{}
		server := httptest.NewServer(received.handler())
		defer server.Close()

		mem := store.NewMemory()
		dispatcher := webhook.NewDispatcher(mem.Webhooks(), zap.NewNop())

		clickedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
		err := dispatcher.LinkClicked(ctx, &analytics.LinkClickedEvent{
			LinkID:     "id-1",
			ShortCode:  "abc",
			Title:      "Example",
			TargetURL:  "https://example.com",
			WebhookURL: server.URL,
			ClientIP:   "1.1.1.1",
			UserAgent:  "TestAgent/1.0",
			Referer:    "https://referrer.example.com",
			ClickedAt:  clickedAt,
		})

		require.NoError(t, err)
		require.Equal(t, 1, received.count())

		payload := received.payloads[0]
		assert.Equal(t, shortlink.EventClick, payload.Event)
		assert.Equal(t, "id-1", payload.Link.ID)
		assert.Equal(t, "abc", payload.Link.ShortCode)
		require.NotNil(t, payload.Click)
		assert.Equal(t, "1.1.1.1", payload.Click.IPAddress)
		assert.Equal(t, clickedAt, payload.Click.Timestamp)
		assert.Equal(t, "Linkboard-Webhook/1.0", received.agents[0])
	})

	t.Run("delivers to subscribed registry webhooks", func(t *testing.T) {
		received := &capture{}
		server := httptest.NewServer(received.handler())
		defer server.Close()

		mem := store.NewMemory()
		require.NoError(t, mem.Webhooks().Create(ctx, &shortlink.Webhook{
			ID: "w-1", Name: "clicks", URL: server.URL,
			IsActive: true, Events: []string{shortlink.EventClick},
		}))

		dispatcher := webhook.NewDispatcher(mem.Webhooks(), zap.NewNop())

		err := dispatcher.LinkClicked(ctx, &analytics.LinkClickedEvent{
			LinkID: "id-1", ShortCode: "abc", ClickedAt: time.Now(),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, received.count())
	})

	t.Run("deduplicates inline and registry targets by url", func(t *testing.T) {
		received := &capture{}
		server := httptest.NewServer(received.handler())
		defer server.Close()

		mem := store.NewMemory()
		require.NoError(t, mem.Webhooks().Create(ctx, &shortlink.Webhook{
			ID: "w-1", Name: "same target", URL: server.URL,
			IsActive: true, Events: []string{shortlink.EventClick},
		}))

		dispatcher := webhook.NewDispatcher(mem.Webhooks(), zap.NewNop())

		err := dispatcher.LinkClicked(ctx, &analytics.LinkClickedEvent{
			LinkID: "id-1", ShortCode: "abc", WebhookURL: server.URL, ClickedAt: time.Now(),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, received.count())
	})

	t.Run("delivery failure is not returned", func(t *testing.T) {
		mem := store.NewMemory()
		dispatcher := webhook.NewDispatcher(mem.Webhooks(), zap.NewNop())

		err := dispatcher.LinkClicked(ctx, &analytics.LinkClickedEvent{
			LinkID: "id-1", WebhookURL: "http://127.0.0.1:1", ClickedAt: time.Now(),
		})

		assert.NoError(t, err)
	})
}

func TestDispatcherLinkCreated(t *testing.T) {
	ctx := context.Background()

	t.Run("posts creation payload with creator metadata", func(t *testing.T) {
		received := &capture{}
		server := httptest.NewServer(received.handler())
		defer server.Close()

		mem := store.NewMemory()
		dispatcher := webhook.NewDispatcher(mem.Webhooks(), zap.NewNop())

		createdAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
		err := dispatcher.LinkCreated(ctx, &analytics.LinkCreatedEvent{
			LinkID:     "id-1",
			ShortCode:  "abc",
			Title:      "Example",
			TargetURL:  "https://example.com",
			Domain:     "go.example.com",
			WebhookURL: server.URL,
			CreatedAt:  createdAt,
			ClientIP:   "1.1.1.1",
			UserAgent:  "TestAgent/1.0",
		})

		require.NoError(t, err)
		require.Equal(t, 1, received.count())

		payload := received.payloads[0]
		assert.Equal(t, shortlink.EventLinkCreated, payload.Event)
		assert.Equal(t, "go.example.com", payload.Link.Domain)
		require.NotNil(t, payload.Creator)
		assert.Equal(t, "1.1.1.1", payload.Creator.IPAddress)
		assert.Nil(t, payload.Click)
	})

	t.Run("no targets means no delivery", func(t *testing.T) {
		mem := store.NewMemory()
		dispatcher := webhook.NewDispatcher(mem.Webhooks(), zap.NewNop())

		err := dispatcher.LinkCreated(ctx, &analytics.LinkCreatedEvent{
			LinkID: "id-1", ShortCode: "abc", CreatedAt: time.Now(),
		})

		assert.NoError(t, err)
	})
}
