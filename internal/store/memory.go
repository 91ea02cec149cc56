package store

import (
	"context"
	"sort"
	"sync"

	"github.com/serroba/linkboard/internal/shortlink"
)

// Memory is an in-memory implementation of every repository interface,
// used by handler tests. Cascade semantics match the relational schema:
// deleting a link removes its clicks.
type Memory struct {
	mu       sync.RWMutex
	links    map[string]*shortlink.Link // id -> link
	clicks   []*shortlink.Click
	webhooks map[string]*shortlink.Webhook
	domains  map[string]*shortlink.CustomDomain
	tokens   map[string]*shortlink.APIToken
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		links:    make(map[string]*shortlink.Link),
		webhooks: make(map[string]*shortlink.Webhook),
		domains:  make(map[string]*shortlink.CustomDomain),
		tokens:   make(map[string]*shortlink.APIToken),
	}
}

// Links returns the link repository view.
func (m *Memory) Links() *MemoryLinks { return &MemoryLinks{m} }

// Clicks returns the click repository view.
func (m *Memory) Clicks() *MemoryClicks { return &MemoryClicks{m} }

// Webhooks returns the webhook repository view.
func (m *Memory) Webhooks() *MemoryWebhooks { return &MemoryWebhooks{m} }

// Domains returns the custom domain repository view.
func (m *Memory) Domains() *MemoryDomains { return &MemoryDomains{m} }

// Tokens returns the API token repository view.
func (m *Memory) Tokens() *MemoryTokens { return &MemoryTokens{m} }

// MemoryLinks implements shortlink.LinkRepository.
type MemoryLinks struct{ m *Memory }

func (r *MemoryLinks) Create(_ context.Context, link *shortlink.Link) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.links {
		if existing.ShortCode == link.ShortCode {
			return shortlink.ErrSlugTaken
		}
	}

	clone := *link
	r.m.links[link.ID] = &clone

	return nil
}

func (r *MemoryLinks) GetByID(_ context.Context, id string) (*shortlink.Link, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	link, ok := r.m.links[id]
	if !ok {
		return nil, shortlink.ErrNotFound
	}

	clone := *link

	return &clone, nil
}

func (r *MemoryLinks) GetByShortCode(_ context.Context, code string) (*shortlink.Link, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, link := range r.m.links {
		if link.ShortCode == code {
			clone := *link

			return &clone, nil
		}
	}

	return nil, shortlink.ErrNotFound
}

func (r *MemoryLinks) GetByShortCodeAndDomain(_ context.Context, code, domain string) (*shortlink.Link, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, link := range r.m.links {
		if link.ShortCode == code && link.Domain == domain {
			clone := *link

			return &clone, nil
		}
	}

	return nil, shortlink.ErrNotFound
}

func (r *MemoryLinks) Update(_ context.Context, id string, upd shortlink.LinkUpdate) (*shortlink.Link, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	link, ok := r.m.links[id]
	if !ok {
		return nil, shortlink.ErrNotFound
	}

	if upd.TargetURL != nil {
		link.TargetURL = *upd.TargetURL
	}

	if upd.Title != nil {
		link.Title = *upd.Title
	}

	if upd.Domain != nil {
		link.Domain = *upd.Domain
	}

	if upd.IsActive != nil {
		link.IsActive = *upd.IsActive
	}

	if upd.WebhookURL != nil {
		link.WebhookURL = *upd.WebhookURL
	}

	if upd.EnableWebhook != nil {
		link.EnableWebhook = *upd.EnableWebhook
	}

	if upd.ConditionalRules != nil {
		rules := *upd.ConditionalRules
		link.ConditionalRules = &rules
	}

	if upd.EnableConditionals != nil {
		link.EnableConditionals = *upd.EnableConditionals
	}

	clone := *link

	return &clone, nil
}

func (r *MemoryLinks) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.links[id]; !ok {
		return shortlink.ErrNotFound
	}

	delete(r.m.links, id)

	// Cascade
	kept := r.m.clicks[:0]

	for _, click := range r.m.clicks {
		if click.LinkID != id {
			kept = append(kept, click)
		}
	}

	r.m.clicks = kept

	return nil
}

func (r *MemoryLinks) List(_ context.Context) ([]*shortlink.Link, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	links := make([]*shortlink.Link, 0, len(r.m.links))

	for _, link := range r.m.links {
		clone := *link
		links = append(links, &clone)
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	return links, nil
}

func (r *MemoryLinks) Top(_ context.Context, limit int) ([]*shortlink.TopLink, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	counts := make(map[string]int64)

	for _, click := range r.m.clicks {
		counts[click.LinkID]++
	}

	top := make([]*shortlink.TopLink, 0, len(r.m.links))

	for _, link := range r.m.links {
		top = append(top, &shortlink.TopLink{Link: *link, ClickCount: counts[link.ID]})
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].ClickCount > top[j].ClickCount
	})

	if len(top) > limit {
		top = top[:limit]
	}

	return top, nil
}

func (r *MemoryLinks) CodeExists(_ context.Context, code string) (bool, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, link := range r.m.links {
		if link.ShortCode == code {
			return true, nil
		}
	}

	return false, nil
}

// MemoryClicks implements shortlink.ClickRepository.
type MemoryClicks struct{ m *Memory }

func (r *MemoryClicks) Record(_ context.Context, click *shortlink.Click) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	clone := *click
	r.m.clicks = append(r.m.clicks, &clone)

	return nil
}

func (r *MemoryClicks) List(_ context.Context, filter shortlink.ClickFilter) ([]*shortlink.Click, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	clicks := make([]*shortlink.Click, 0)

	for _, click := range r.m.clicks {
		if filter.LinkID != "" && click.LinkID != filter.LinkID {
			continue
		}

		if filter.Start != nil && click.ClickedAt.Before(*filter.Start) {
			continue
		}

		if filter.End != nil && click.ClickedAt.After(*filter.End) {
			continue
		}

		clone := *click
		clicks = append(clicks, &clone)
	}

	sort.Slice(clicks, func(i, j int) bool {
		return clicks[i].ClickedAt.After(clicks[j].ClickedAt)
	})

	return clicks, nil
}

// MemoryWebhooks implements shortlink.WebhookRepository.
type MemoryWebhooks struct{ m *Memory }

func (r *MemoryWebhooks) Create(_ context.Context, webhook *shortlink.Webhook) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	clone := *webhook
	r.m.webhooks[webhook.ID] = &clone

	return nil
}

func (r *MemoryWebhooks) List(_ context.Context) ([]*shortlink.Webhook, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	webhooks := make([]*shortlink.Webhook, 0, len(r.m.webhooks))

	for _, webhook := range r.m.webhooks {
		clone := *webhook
		webhooks = append(webhooks, &clone)
	}

	sort.Slice(webhooks, func(i, j int) bool {
		return webhooks[i].CreatedAt.After(webhooks[j].CreatedAt)
	})

	return webhooks, nil
}

func (r *MemoryWebhooks) Update(_ context.Context, id string, upd shortlink.WebhookUpdate) (*shortlink.Webhook, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	webhook, ok := r.m.webhooks[id]
	if !ok {
		return nil, shortlink.ErrNotFound
	}

	if upd.Name != nil {
		webhook.Name = *upd.Name
	}

	if upd.URL != nil {
		webhook.URL = *upd.URL
	}

	if upd.IsActive != nil {
		webhook.IsActive = *upd.IsActive
	}

	if upd.Events != nil {
		webhook.Events = append([]string(nil), (*upd.Events)...)
	}

	clone := *webhook

	return &clone, nil
}

func (r *MemoryWebhooks) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.webhooks[id]; !ok {
		return shortlink.ErrNotFound
	}

	delete(r.m.webhooks, id)

	return nil
}

func (r *MemoryWebhooks) ListActiveForEvent(ctx context.Context, event string) ([]*shortlink.Webhook, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*shortlink.Webhook, 0, len(all))

	for _, webhook := range all {
		if webhook.IsActive && webhook.Subscribed(event) {
			active = append(active, webhook)
		}
	}

	return active, nil
}

// MemoryDomains implements shortlink.DomainRepository.
type MemoryDomains struct{ m *Memory }

func (r *MemoryDomains) Create(_ context.Context, domain *shortlink.CustomDomain) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.domains {
		if existing.Domain == domain.Domain {
			return shortlink.ErrDomainTaken
		}
	}

	clone := *domain
	r.m.domains[domain.ID] = &clone

	return nil
}

func (r *MemoryDomains) List(_ context.Context) ([]*shortlink.CustomDomain, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	domains := make([]*shortlink.CustomDomain, 0, len(r.m.domains))

	for _, domain := range r.m.domains {
		clone := *domain
		domains = append(domains, &clone)
	}

	sort.Slice(domains, func(i, j int) bool {
		return domains[i].CreatedAt.After(domains[j].CreatedAt)
	})

	return domains, nil
}

// MemoryTokens implements shortlink.TokenRepository.
type MemoryTokens struct{ m *Memory }

func (r *MemoryTokens) Create(_ context.Context, token *shortlink.APIToken) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	clone := *token
	r.m.tokens[token.ID] = &clone

	return nil
}

func (r *MemoryTokens) List(_ context.Context) ([]*shortlink.APIToken, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	tokens := make([]*shortlink.APIToken, 0, len(r.m.tokens))

	for _, token := range r.m.tokens {
		clone := *token
		tokens = append(tokens, &clone)
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.After(tokens[j].CreatedAt)
	})

	return tokens, nil
}

func (r *MemoryTokens) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.tokens[id]; !ok {
		return shortlink.ErrNotFound
	}

	delete(r.m.tokens, id)

	return nil
}

func (r *MemoryTokens) GetByToken(_ context.Context, value string) (*shortlink.APIToken, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, token := range r.m.tokens {
		if token.Token == value {
			clone := *token

			return &clone, nil
		}
	}

	return nil, shortlink.ErrNotFound
}

// Compile-time checks.
var (
	_ shortlink.LinkRepository    = (*MemoryLinks)(nil)
	_ shortlink.ClickRepository   = (*MemoryClicks)(nil)
	_ shortlink.WebhookRepository = (*MemoryWebhooks)(nil)
	_ shortlink.DomainRepository  = (*MemoryDomains)(nil)
	_ shortlink.TokenRepository   = (*MemoryTokens)(nil)
)
