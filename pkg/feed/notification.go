package feed

import "time"

// ChannelType enumerates delivery channels for a notification.
type ChannelType string

const (
	ChannelInApp ChannelType = "in_app"
	ChannelEmail ChannelType = "email"
)

// CTA types.
const (
	CTARedirect = "redirect"
)

// CTA is the call-to-action descriptor attached to a notification.
type CTA struct {
	Type        string `json:"type"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Notification is a single feed record.
type Notification struct {
	ID           string         `json:"id"`
	SubscriberID string         `json:"subscriber_id"`
	Channel      ChannelType    `json:"channel"`
	Content      string         `json:"content"` // rendered message body
	CTA          *CTA           `json:"cta,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"` // arbitrary custom data
	Seen         bool           `json:"seen"`
	SeenAt       *time.Time     `json:"seen_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*n.ExpiresAt)
}

// MarkAsSeen marks the notification as seen with the current timestamp.
func (n *Notification) MarkAsSeen() {
	n.Seen = true
	now := time.Now()
	n.SeenAt = &now
}
