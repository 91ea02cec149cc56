// Package container wires the application together with samber/do. Each
// XxxPackage function registers one concern's providers; binaries compose
// the packages they need.
package container

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/auth"
	"github.com/serroba/linkboard/internal/handlers"
	"github.com/serroba/linkboard/internal/health"
	"github.com/serroba/linkboard/internal/messaging"
	"github.com/serroba/linkboard/internal/middleware"
	"github.com/serroba/linkboard/internal/shortlink"
	"github.com/serroba/linkboard/internal/store"
	"github.com/serroba/linkboard/internal/webhook"
)

// Options holds the runtime configuration for all binaries.
type Options struct {
	Port        int    `default:"8888"                                     help:"Port to listen on"                          short:"p"`
	DatabaseURL string `default:"postgres://localhost:5432/linkboard"      help:"Postgres connection string"                 short:"d"`
	RedisAddr   string `default:"localhost:6379"                           help:"Redis server address"                       short:"r"`
	CodeLength  int    `default:"8"                                       help:"Length of generated short codes"            short:"c"`
	CacheTTLSec int    `default:"300"                                     help:"Link cache TTL in seconds"`
	AuthSecret  string `help:"HMAC secret for session token verification" name:"auth-secret"`
	LogFormat   string `default:"console"                                 enum:"console,json"                               help:"Log output format"`
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: options.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx connection pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		return pgxpool.New(context.Background(), options.DatabaseURL)
	})
}

// RepositoryPackage provides the storage repositories. Link lookups are
// served through the Redis read-through cache.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortlink.LinkRepository, error) {
		options := do.MustInvoke[*Options](i)
		pool := do.MustInvoke[*pgxpool.Pool](i)
		client := do.MustInvoke[*redis.Client](i)

		ttl := time.Duration(options.CacheTTLSec) * time.Second

		return store.NewLinkCache(store.NewLinkStore(pool), client, ttl), nil
	})

	do.Provide(injector, func(i *do.Injector) (shortlink.ClickRepository, error) {
		return store.NewClickStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (shortlink.WebhookRepository, error) {
		return store.NewWebhookStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (shortlink.DomainRepository, error) {
		return store.NewDomainStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (shortlink.TokenRepository, error) {
		return store.NewTokenStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (shortlink.CodeGenerator, error) {
		options := do.MustInvoke[*Options](i)

		return shortlink.NewCodeGenerator(options.CodeLength)
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Aggregator, error) {
		links := do.MustInvoke[shortlink.LinkRepository](i)
		clicks := do.MustInvoke[shortlink.ClickRepository](i)

		return analytics.NewAggregator(links, clicks), nil
	})
}

// AuthPackage provides the credential verifier: session tokens first, then
// stored API tokens.
func AuthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (auth.Verifier, error) {
		options := do.MustInvoke[*Options](i)
		tokens := do.MustInvoke[shortlink.TokenRepository](i)

		return auth.ChainVerifier{
			auth.NewSessionVerifier(options.AuthSecret),
			auth.NewTokenVerifier(tokens),
		}, nil
	})
}

// PublisherGroupPackage provides the Redis stream publisher and the typed
// publish functions for link events.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkCreatedEvent](group.Publisher(), analytics.TopicLinkCreated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkClickedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkClickedEvent](group.Publisher(), analytics.TopicLinkClicked), nil
	})
}

// ConsumerGroupPackage provides the webhook delivery consumers, one per
// event topic, sharing a Redis stream consumer group.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (message.Subscriber, error) {
		client := do.MustInvoke[*redis.Client](i)

		return redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: "linkboard-webhooks",
		}, watermill.NewStdLogger(false, false))
	})

	do.Provide(injector, func(i *do.Injector) (*webhook.Dispatcher, error) {
		registry := do.MustInvoke[shortlink.WebhookRepository](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return webhook.NewDispatcher(registry, logger), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		subscriber := do.MustInvoke[message.Subscriber](i)
		dispatcher := do.MustInvoke[*webhook.Dispatcher](i)
		logger := do.MustInvoke[*zap.Logger](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkCreated, dispatcher.LinkCreated, logger))
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkClicked, dispatcher.LinkClicked, logger))

		return group, nil
	})
}

// HTTPPackage provides the chi router and the huma API with all routes and
// middleware registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		verifier := do.MustInvoke[auth.Verifier](i)

		links := do.MustInvoke[shortlink.LinkRepository](i)
		clicks := do.MustInvoke[shortlink.ClickRepository](i)
		webhooks := do.MustInvoke[shortlink.WebhookRepository](i)
		domains := do.MustInvoke[shortlink.DomainRepository](i)
		tokens := do.MustInvoke[shortlink.TokenRepository](i)
		generate := do.MustInvoke[shortlink.CodeGenerator](i)
		aggregator := do.MustInvoke[*analytics.Aggregator](i)

		publishCreated := do.MustInvoke[messaging.Publish[analytics.LinkCreatedEvent]](i)
		publishClicked := do.MustInvoke[messaging.Publish[analytics.LinkClickedEvent]](i)

		api := humachi.New(router, huma.DefaultConfig("Linkboard", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.Authenticate(api, verifier, logger))

		handlers.RegisterRoutes(api,
			handlers.NewLinkHandler(links, generate, publishCreated, logger),
			handlers.NewRedirectHandler(links, clicks, publishClicked, logger),
			handlers.NewAnalyticsHandler(aggregator, clicks, logger),
			handlers.NewWebhookHandler(webhooks, logger),
			handlers.NewDomainHandler(domains, logger),
			handlers.NewTokenHandler(tokens, logger),
		)

		pool := do.MustInvoke[*pgxpool.Pool](i)
		client := do.MustInvoke[*redis.Client](i)
		health.RegisterRoutes(api, health.NewHandler(
			health.NewPostgresChecker(pool),
			health.NewRedisChecker(client),
		))

		return api, nil
	})
}
