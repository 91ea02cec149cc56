package shortlink

import (
	"context"
	"time"
)

// LinkUpdate carries the fields of a partial link update. Nil fields are
// left unchanged.
type LinkUpdate struct {
	TargetURL          *string
	Title              *string
	Domain             *string
	IsActive           *bool
	WebhookURL         *string
	EnableWebhook      *bool
	ConditionalRules   *ConditionalRules
	EnableConditionals *bool
}

// LinkRepository defines storage operations for links.
type LinkRepository interface {
	Create(ctx context.Context, link *Link) error
	GetByID(ctx context.Context, id string) (*Link, error)
	GetByShortCode(ctx context.Context, code string) (*Link, error)
	GetByShortCodeAndDomain(ctx context.Context, code, domain string) (*Link, error)
	Update(ctx context.Context, id string, upd LinkUpdate) (*Link, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Link, error)
	Top(ctx context.Context, limit int) ([]*TopLink, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

// ClickFilter narrows click queries. Start and End are inclusive.
type ClickFilter struct {
	LinkID string
	Start  *time.Time
	End    *time.Time
}

// ClickRepository defines storage operations for clicks.
type ClickRepository interface {
	Record(ctx context.Context, click *Click) error
	List(ctx context.Context, filter ClickFilter) ([]*Click, error)
}

// WebhookUpdate carries the fields of a partial webhook update.
type WebhookUpdate struct {
	Name     *string
	URL      *string
	IsActive *bool
	Events   *[]string
}

// WebhookRepository defines storage operations for the webhook registry.
type WebhookRepository interface {
	Create(ctx context.Context, webhook *Webhook) error
	List(ctx context.Context) ([]*Webhook, error)
	Update(ctx context.Context, id string, upd WebhookUpdate) (*Webhook, error)
	Delete(ctx context.Context, id string) error

	// ListActiveForEvent returns active webhooks subscribed to the event.
	ListActiveForEvent(ctx context.Context, event string) ([]*Webhook, error)
}

// DomainRepository defines storage operations for custom domains.
type DomainRepository interface {
	Create(ctx context.Context, domain *CustomDomain) error
	List(ctx context.Context) ([]*CustomDomain, error)
}

// TokenRepository defines storage operations for API tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *APIToken) error
	List(ctx context.Context) ([]*APIToken, error)
	Delete(ctx context.Context, id string) error
	GetByToken(ctx context.Context, value string) (*APIToken, error)
}
