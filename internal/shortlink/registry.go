package shortlink

import "time"

// Webhook event names delivered by the dispatcher.
const (
	EventLinkCreated = "link_created"
	EventClick       = "click"
	EventTest        = "test"
)

// Webhook is a registry entry for outbound notifications. It is independent
// of any single link; subscribed events apply across all links.
type Webhook struct {
	ID        string
	Name      string
	URL       string
	IsActive  bool
	Events    []string
	CreatedAt time.Time
}

// Subscribed reports whether the webhook is subscribed to the given event.
func (w *Webhook) Subscribed(event string) bool {
	for _, e := range w.Events {
		if e == event {
			return true
		}
	}

	return false
}

// CustomDomain is a user-registered domain for multi-domain redirect
// resolution. Verification state is set at creation and never re-checked.
type CustomDomain struct {
	ID                 string
	Domain             string
	IsVerified         bool
	VerificationMethod string // "CNAME" or "TXT"
	VerificationRecord string
	CreatedAt          time.Time
}

// APIToken is an opaque credential for programmatic API access.
type APIToken struct {
	ID        string
	Name      string
	Token     string
	IsActive  bool
	LastUsed  *time.Time
	CreatedAt time.Time
}
