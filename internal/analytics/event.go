package analytics

import "time"

// Topics for link lifecycle events.
const (
	TopicLinkCreated = "link.created"
	TopicLinkClicked = "link.clicked"
)

// LinkCreatedEvent is emitted when a link is created. WebhookURL is set only
// when the link has its inline webhook enabled.
type LinkCreatedEvent struct {
	LinkID     string    `json:"linkId"`
	ShortCode  string    `json:"shortCode"`
	Title      string    `json:"title"`
	TargetURL  string    `json:"targetUrl"`
	Domain     string    `json:"domain,omitempty"`
	WebhookURL string    `json:"webhookUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
}

// LinkClickedEvent is emitted for every resolved redirect. WebhookURL is set
// only when the link has its inline webhook enabled.
type LinkClickedEvent struct {
	LinkID     string    `json:"linkId"`
	ShortCode  string    `json:"shortCode"`
	Title      string    `json:"title"`
	TargetURL  string    `json:"targetUrl"`
	WebhookURL string    `json:"webhookUrl,omitempty"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referer    string    `json:"referer,omitempty"`
	ClickedAt  time.Time `json:"clickedAt"`
}
