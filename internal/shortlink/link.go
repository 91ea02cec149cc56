package shortlink

import "time"

// ConditionalRules maps coarse device classes to alternate redirect targets.
// Only the keys consulted by the redirect path are modeled; unknown keys in
// stored rule blobs are ignored.
type ConditionalRules struct {
	Mobile  string `json:"mobile,omitempty"`
	Desktop string `json:"desktop,omitempty"`
}

// Link represents a shortened link entity.
type Link struct {
	ID                 string
	ShortCode          string
	TargetURL          string
	Title              string
	CustomSlug         string
	Domain             string // empty for the default domain
	IsActive           bool
	WebhookURL         string
	EnableWebhook      bool
	ConditionalRules   *ConditionalRules
	EnableConditionals bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TopLink is a link annotated with its click count for ranking queries.
type TopLink struct {
	Link
	ClickCount int64
}

// Click is one recorded resolution of a short code to its target.
// Rows are append-only and cascade-deleted with their parent link.
// Country and City exist in the schema but are never populated (no geo-IP).
type Click struct {
	ID        string
	LinkID    string
	IPAddress string
	UserAgent string
	Referer   string
	Country   string
	City      string
	Device    string
	Browser   string
	OS        string
	ClickedAt time.Time
}
