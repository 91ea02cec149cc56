package handlers

import (
	"time"

	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/shortlink"
)

// Link is the API representation of a link.
type Link struct {
	ID                 string                      `doc:"Link identifier" json:"id"`
	ShortCode          string                      `doc:"Unique short code" json:"shortCode"`
	TargetURL          string                      `doc:"Destination URL" json:"targetUrl"`
	Title              string                      `doc:"Display title" json:"title"`
	CustomSlug         string                      `doc:"Caller-chosen short code, if any" json:"customSlug,omitempty"`
	Domain             string                      `doc:"Custom domain for resolution" json:"domain,omitempty"`
	IsActive           bool                        `doc:"Whether the link resolves" json:"isActive"`
	WebhookURL         string                      `doc:"Inline webhook target" json:"webhookUrl,omitempty"`
	EnableWebhook      bool                        `doc:"Whether the inline webhook fires" json:"enableWebhook"`
	ConditionalRules   *shortlink.ConditionalRules `doc:"Device-conditional redirect targets" json:"conditionalRules,omitempty"`
	EnableConditionals bool                        `doc:"Whether conditional rules apply" json:"enableConditionals"`
	CreatedAt          time.Time                   `json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
}

func toLink(l *shortlink.Link) Link {
	return Link{
		ID:                 l.ID,
		ShortCode:          l.ShortCode,
		TargetURL:          l.TargetURL,
		Title:              l.Title,
		CustomSlug:         l.CustomSlug,
		Domain:             l.Domain,
		IsActive:           l.IsActive,
		WebhookURL:         l.WebhookURL,
		EnableWebhook:      l.EnableWebhook,
		ConditionalRules:   l.ConditionalRules,
		EnableConditionals: l.EnableConditionals,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// TopLink is a link annotated with its click count.
type TopLink struct {
	Link
	ClickCount int64 `doc:"Total recorded clicks" json:"clickCount"`
}

func toTopLinks(top []*shortlink.TopLink) []TopLink {
	out := make([]TopLink, 0, len(top))

	for _, entry := range top {
		out = append(out, TopLink{Link: toLink(&entry.Link), ClickCount: entry.ClickCount})
	}

	return out
}

// ListLinksResponse is the response for listing links.
type ListLinksResponse struct {
	Body []Link
}

// TopLinksRequest is the request for the top-links ranking.
type TopLinksRequest struct {
	Limit int `default:"10" doc:"Maximum number of links to return" maximum:"100" minimum:"1" query:"limit"`
}

// TopLinksResponse is the response for the top-links ranking.
type TopLinksResponse struct {
	Body []TopLink
}

// CreateLinkRequest is the request body for creating a link.
type CreateLinkRequest struct {
	Body struct {
		TargetURL          string                      `doc:"Destination URL" format:"uri" json:"targetUrl"`
		Title              string                      `doc:"Display title" json:"title" minLength:"1"`
		CustomSlug         string                      `doc:"Caller-chosen short code" json:"customSlug,omitempty" maxLength:"255"`
		Domain             string                      `doc:"Custom domain for resolution" json:"domain,omitempty"`
		IsActive           *bool                       `doc:"Defaults to true" json:"isActive,omitempty"`
		WebhookURL         string                      `doc:"Inline webhook target" format:"uri" json:"webhookUrl,omitempty"`
		EnableWebhook      bool                        `json:"enableWebhook,omitempty"`
		ConditionalRules   *shortlink.ConditionalRules `json:"conditionalRules,omitempty"`
		EnableConditionals bool                        `json:"enableConditionals,omitempty"`
	}
}

// LinkResponse is the response carrying a single link.
type LinkResponse struct {
	Body Link
}

// GetLinkRequest is the request for fetching one link.
type GetLinkRequest struct {
	ID string `doc:"Link identifier" path:"id"`
}

// UpdateLinkRequest is the request for a partial link update.
type UpdateLinkRequest struct {
	ID   string `doc:"Link identifier" path:"id"`
	Body struct {
		TargetURL          *string                     `format:"uri" json:"targetUrl,omitempty"`
		Title              *string                     `json:"title,omitempty" minLength:"1"`
		Domain             *string                     `json:"domain,omitempty"`
		IsActive           *bool                       `json:"isActive,omitempty"`
		WebhookURL         *string                     `json:"webhookUrl,omitempty"`
		EnableWebhook      *bool                       `json:"enableWebhook,omitempty"`
		ConditionalRules   *shortlink.ConditionalRules `json:"conditionalRules,omitempty"`
		EnableConditionals *bool                       `json:"enableConditionals,omitempty"`
	}
}

// DeleteLinkRequest is the request for deleting a link.
type DeleteLinkRequest struct {
	ID string `doc:"Link identifier" path:"id"`
}

// DeleteResponse is an empty 204 response.
type DeleteResponse struct{}

// RedirectRequest is the public redirect request.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"1a2b3c4d" path:"shortCode"`
}

// RedirectResponse issues the HTTP redirect to the resolved target.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"Redirect target" header:"Location"`
	}
}

// AnalyticsRequest filters the click aggregation.
type AnalyticsRequest struct {
	LinkID    string `doc:"Restrict to one link" query:"linkId" required:"false"`
	StartDate string `doc:"Inclusive range start (RFC 3339 or YYYY-MM-DD)" query:"startDate" required:"false"`
	EndDate   string `doc:"Inclusive range end (RFC 3339 or YYYY-MM-DD)" query:"endDate" required:"false"`
}

// AnalyticsResponse carries the aggregate click summary.
type AnalyticsResponse struct {
	Body analytics.Summary
}

// DashboardStats is the API representation of the dashboard summary.
type DashboardStats struct {
	TotalLinks     int       `json:"totalLinks"`
	TotalClicks    int       `json:"totalClicks"`
	WeeklyClicks   int       `json:"weeklyClicks"`
	ClickRate      string    `doc:"Monthly clicks per link, one decimal" json:"clickRate"`
	ActiveWebhooks int       `json:"activeWebhooks"`
	TopLinks       []TopLink `json:"topLinks"`
}

// DashboardResponse carries the dashboard summary.
type DashboardResponse struct {
	Body DashboardStats
}

// ExportRequest filters the CSV export.
type ExportRequest struct {
	LinkID    string `doc:"Restrict to one link" query:"linkId" required:"false"`
	StartDate string `doc:"Inclusive range start (RFC 3339 or YYYY-MM-DD)" query:"startDate" required:"false"`
	EndDate   string `doc:"Inclusive range end (RFC 3339 or YYYY-MM-DD)" query:"endDate" required:"false"`
}

// ExportResponse is the CSV attachment.
type ExportResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// Webhook is the API representation of a registry webhook.
type Webhook struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	IsActive  bool      `json:"isActive"`
	Events    []string  `doc:"Subscribed event names" json:"events"`
	CreatedAt time.Time `json:"createdAt"`
}

func toWebhook(w *shortlink.Webhook) Webhook {
	events := w.Events
	if events == nil {
		events = []string{}
	}

	return Webhook{
		ID:        w.ID,
		Name:      w.Name,
		URL:       w.URL,
		IsActive:  w.IsActive,
		Events:    events,
		CreatedAt: w.CreatedAt,
	}
}

// ListWebhooksResponse is the response for listing webhooks.
type ListWebhooksResponse struct {
	Body []Webhook
}

// CreateWebhookRequest is the request body for creating a webhook.
type CreateWebhookRequest struct {
	Body struct {
		Name     string   `json:"name" minLength:"1"`
		URL      string   `format:"uri" json:"url"`
		IsActive *bool    `doc:"Defaults to true" json:"isActive,omitempty"`
		Events   []string `doc:"Subscribed event names" json:"events,omitempty"`
	}
}

// WebhookResponse carries a single webhook.
type WebhookResponse struct {
	Body Webhook
}

// UpdateWebhookRequest is the request for a partial webhook update.
type UpdateWebhookRequest struct {
	ID   string `doc:"Webhook identifier" path:"id"`
	Body struct {
		Name     *string   `json:"name,omitempty" minLength:"1"`
		URL      *string   `format:"uri" json:"url,omitempty"`
		IsActive *bool     `json:"isActive,omitempty"`
		Events   *[]string `json:"events,omitempty"`
	}
}

// DeleteWebhookRequest is the request for deleting a webhook.
type DeleteWebhookRequest struct {
	ID string `doc:"Webhook identifier" path:"id"`
}

// CustomDomain is the API representation of a custom domain.
type CustomDomain struct {
	ID                 string    `json:"id"`
	Domain             string    `json:"domain"`
	IsVerified         bool      `json:"isVerified"`
	VerificationMethod string    `json:"verificationMethod"`
	VerificationRecord string    `doc:"Record value to publish in DNS" json:"verificationRecord"`
	CreatedAt          time.Time `json:"createdAt"`
}

func toDomain(d *shortlink.CustomDomain) CustomDomain {
	return CustomDomain{
		ID:                 d.ID,
		Domain:             d.Domain,
		IsVerified:         d.IsVerified,
		VerificationMethod: d.VerificationMethod,
		VerificationRecord: d.VerificationRecord,
		CreatedAt:          d.CreatedAt,
	}
}

// ListDomainsResponse is the response for listing custom domains.
type ListDomainsResponse struct {
	Body []CustomDomain
}

// CreateDomainRequest is the request body for registering a custom domain.
type CreateDomainRequest struct {
	Body struct {
		Domain             string `doc:"Domain name" json:"domain" minLength:"1"`
		VerificationMethod string `enum:"CNAME,TXT" json:"verificationMethod"`
	}
}

// DomainResponse carries a single custom domain.
type DomainResponse struct {
	Body CustomDomain
}

// APIToken is the API representation of an API token. The token value is
// returned in full once at creation; clients mask it afterwards.
type APIToken struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Token     string     `json:"token"`
	IsActive  bool       `json:"isActive"`
	LastUsed  *time.Time `json:"lastUsed,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toToken(t *shortlink.APIToken) APIToken {
	return APIToken{
		ID:        t.ID,
		Name:      t.Name,
		Token:     t.Token,
		IsActive:  t.IsActive,
		LastUsed:  t.LastUsed,
		CreatedAt: t.CreatedAt,
	}
}

// ListTokensResponse is the response for listing API tokens.
type ListTokensResponse struct {
	Body []APIToken
}

// CreateTokenRequest is the request body for issuing an API token.
type CreateTokenRequest struct {
	Body struct {
		Name string `json:"name" minLength:"1"`
	}
}

// TokenResponse carries a single API token.
type TokenResponse struct {
	Body APIToken
}

// DeleteTokenRequest is the request for revoking an API token.
type DeleteTokenRequest struct {
	ID string `doc:"Token identifier" path:"id"`
}
