package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/linkboard/internal/shortlink"
)

// LinkCache wraps a LinkRepository with Redis caching for the redirect
// lookup path. Entries are stored as JSON under a (domain, code) key; the
// shortCode-only lookup uses an empty domain segment. Writes go through to
// the underlying store first, cache errors are ignored.
type LinkCache struct {
	store  shortlink.LinkRepository
	client *redis.Client
	ttl    time.Duration
}

// NewLinkCache creates a Redis-cached link repository decorator.
func NewLinkCache(store shortlink.LinkRepository, client *redis.Client, ttl time.Duration) *LinkCache {
	return &LinkCache{
		store:  store,
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(domain, code string) string {
	return "link:" + domain + "|" + code
}

func (c *LinkCache) Create(ctx context.Context, link *shortlink.Link) error {
	if err := c.store.Create(ctx, link); err != nil {
		return err
	}

	c.cache(ctx, link)

	return nil
}

func (c *LinkCache) GetByID(ctx context.Context, id string) (*shortlink.Link, error) {
	return c.store.GetByID(ctx, id)
}

func (c *LinkCache) GetByShortCode(ctx context.Context, code string) (*shortlink.Link, error) {
	if link, err := c.get(ctx, cacheKey("", code)); err == nil {
		return link, nil
	}

	link, err := c.store.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}

	c.cache(ctx, link)

	return link, nil
}

func (c *LinkCache) GetByShortCodeAndDomain(ctx context.Context, code, domain string) (*shortlink.Link, error) {
	if link, err := c.get(ctx, cacheKey(domain, code)); err == nil {
		return link, nil
	}

	link, err := c.store.GetByShortCodeAndDomain(ctx, code, domain)
	if err != nil {
		return nil, err
	}

	c.cache(ctx, link)

	return link, nil
}

func (c *LinkCache) Update(ctx context.Context, id string, upd shortlink.LinkUpdate) (*shortlink.Link, error) {
	link, err := c.store.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	// Write-through: the short code never changes on update, so the fresh
	// row lands under the same keys. A domain change leaves a stale entry
	// under the old domain key until its TTL expires.
	c.cache(ctx, link)

	return link, nil
}

func (c *LinkCache) Delete(ctx context.Context, id string) error {
	link, err := c.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.client.Del(ctx, cacheKey("", link.ShortCode), cacheKey(link.Domain, link.ShortCode))

	return nil
}

func (c *LinkCache) List(ctx context.Context) ([]*shortlink.Link, error) {
	return c.store.List(ctx)
}

func (c *LinkCache) Top(ctx context.Context, limit int) ([]*shortlink.TopLink, error) {
	return c.store.Top(ctx, limit)
}

func (c *LinkCache) CodeExists(ctx context.Context, code string) (bool, error) {
	return c.store.CodeExists(ctx, code)
}

func (c *LinkCache) get(ctx context.Context, key string) (*shortlink.Link, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var link shortlink.Link
	if err := json.Unmarshal(payload, &link); err != nil {
		return nil, err
	}

	return &link, nil
}

func (c *LinkCache) cache(ctx context.Context, link *shortlink.Link) {
	payload, err := json.Marshal(link)
	if err != nil {
		return
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, cacheKey("", link.ShortCode), payload, c.ttl)

	if link.Domain != "" {
		pipe.Set(ctx, cacheKey(link.Domain, link.ShortCode), payload, c.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

// Compile-time check.
var _ shortlink.LinkRepository = (*LinkCache)(nil)
