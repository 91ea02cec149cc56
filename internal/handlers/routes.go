package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/serroba/linkboard/internal/auth"
)

// RegisterRoutes registers the dashboard API and the public redirect path.
// Everything under /api requires a bearer credential; the redirect and the
// health probe are marked public so the auth middleware skips them.
func RegisterRoutes(
	api huma.API,
	links *LinkHandler,
	redirect *RedirectHandler,
	analytics *AnalyticsHandler,
	webhooks *WebhookHandler,
	domains *DomainHandler,
	tokens *TokenHandler,
) {
	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/api/links",
		Summary:     "List links",
		Tags:        []string{"Links"},
	}, links.ListLinks)

	huma.Register(api, huma.Operation{
		OperationID:   "create-link",
		Method:        http.MethodPost,
		Path:          "/api/links",
		Summary:       "Create link",
		Description:   "Creates a link, generating a short code unless a custom slug is given.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
	}, links.CreateLink)

	huma.Register(api, huma.Operation{
		OperationID: "top-links",
		Method:      http.MethodGet,
		Path:        "/api/links/top",
		Summary:     "Top links by clicks",
		Tags:        []string{"Links"},
	}, links.TopLinks)

	huma.Register(api, huma.Operation{
		OperationID: "get-link",
		Method:      http.MethodGet,
		Path:        "/api/links/{id}",
		Summary:     "Get link",
		Tags:        []string{"Links"},
	}, links.GetLink)

	huma.Register(api, huma.Operation{
		OperationID: "update-link",
		Method:      http.MethodPut,
		Path:        "/api/links/{id}",
		Summary:     "Update link",
		Tags:        []string{"Links"},
	}, links.UpdateLink)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-link",
		Method:        http.MethodDelete,
		Path:          "/api/links/{id}",
		Summary:       "Delete link",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusNoContent,
	}, links.DeleteLink)

	huma.Register(api, huma.Operation{
		OperationID: "get-analytics",
		Method:      http.MethodGet,
		Path:        "/api/analytics",
		Summary:     "Aggregate clicks",
		Tags:        []string{"Analytics"},
	}, analytics.GetAnalytics)

	huma.Register(api, huma.Operation{
		OperationID: "dashboard-stats",
		Method:      http.MethodGet,
		Path:        "/api/analytics/dashboard",
		Summary:     "Dashboard summary",
		Tags:        []string{"Analytics"},
	}, analytics.Dashboard)

	huma.Register(api, huma.Operation{
		OperationID: "export-analytics",
		Method:      http.MethodGet,
		Path:        "/api/analytics/export",
		Summary:     "Export clicks as CSV",
		Tags:        []string{"Analytics"},
	}, analytics.Export)

	huma.Register(api, huma.Operation{
		OperationID: "list-webhooks",
		Method:      http.MethodGet,
		Path:        "/api/webhooks",
		Summary:     "List webhooks",
		Tags:        []string{"Webhooks"},
	}, webhooks.ListWebhooks)

	huma.Register(api, huma.Operation{
		OperationID:   "create-webhook",
		Method:        http.MethodPost,
		Path:          "/api/webhooks",
		Summary:       "Create webhook",
		Tags:          []string{"Webhooks"},
		DefaultStatus: http.StatusCreated,
	}, webhooks.CreateWebhook)

	huma.Register(api, huma.Operation{
		OperationID: "update-webhook",
		Method:      http.MethodPut,
		Path:        "/api/webhooks/{id}",
		Summary:     "Update webhook",
		Tags:        []string{"Webhooks"},
	}, webhooks.UpdateWebhook)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-webhook",
		Method:        http.MethodDelete,
		Path:          "/api/webhooks/{id}",
		Summary:       "Delete webhook",
		Tags:          []string{"Webhooks"},
		DefaultStatus: http.StatusNoContent,
	}, webhooks.DeleteWebhook)

	huma.Register(api, huma.Operation{
		OperationID: "list-domains",
		Method:      http.MethodGet,
		Path:        "/api/domains",
		Summary:     "List custom domains",
		Tags:        []string{"Domains"},
	}, domains.ListDomains)

	huma.Register(api, huma.Operation{
		OperationID:   "create-domain",
		Method:        http.MethodPost,
		Path:          "/api/domains",
		Summary:       "Register custom domain",
		Tags:          []string{"Domains"},
		DefaultStatus: http.StatusCreated,
	}, domains.CreateDomain)

	huma.Register(api, huma.Operation{
		OperationID: "list-tokens",
		Method:      http.MethodGet,
		Path:        "/api/tokens",
		Summary:     "List API tokens",
		Tags:        []string{"Tokens"},
	}, tokens.ListTokens)

	huma.Register(api, huma.Operation{
		OperationID:   "create-token",
		Method:        http.MethodPost,
		Path:          "/api/tokens",
		Summary:       "Issue API token",
		Description:   "The token value is returned in full only in this response.",
		Tags:          []string{"Tokens"},
		DefaultStatus: http.StatusCreated,
	}, tokens.CreateToken)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-token",
		Method:        http.MethodDelete,
		Path:          "/api/tokens/{id}",
		Summary:       "Revoke API token",
		Tags:          []string{"Tokens"},
		DefaultStatus: http.StatusNoContent,
	}, tokens.DeleteToken)

	// Registered last so every /api route wins over the catch-all code.
	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{shortCode}",
		Summary:     "Redirect to target URL",
		Description: "Resolves a short code, records the click and redirects.",
		Tags:        []string{"Redirect"},
		Metadata: map[string]any{
			auth.MetadataPublic: true,
		},
	}, redirect.Redirect)
}
