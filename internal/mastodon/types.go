// Package mastodon is a thin client for the subset of the Mastodon REST and
// streaming APIs the intake bot consumes.
package mastodon

import (
	"fmt"
	"time"
)

// NotificationMention is the notification type produced when someone
// addresses the account in a post.
const NotificationMention = "mention"

// Account is the author of a status or notification.
type Account struct {
	ID          string `json:"id"`
	Acct        string `json:"acct"`
	URL         string `json:"url"`
	DisplayName string `json:"display_name"`
}

// Mention is an account addressed by a status.
type Mention struct {
	ID   string `json:"id"`
	Acct string `json:"acct"`
}

// Tag is a hashtag attached to a status.
type Tag struct {
	Name string `json:"name"`
}

// MediaAttachment is an image or video attached to a status.
type MediaAttachment struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url"`
}

// Status is a post. Slices are nil when the server omits them and
// InReplyToID is nil for top-level posts.
type Status struct {
	ID               string            `json:"id"`
	URL              string            `json:"url"`
	CreatedAt        time.Time         `json:"created_at"`
	Account          Account           `json:"account"`
	Mentions         []Mention         `json:"mentions"`
	Tags             []Tag             `json:"tags"`
	MediaAttachments []MediaAttachment `json:"media_attachments"`
	InReplyToID      *string           `json:"in_reply_to_id"`
}

// HasMentions reports whether the status addresses any account.
func (s *Status) HasMentions() bool {
	return s != nil && len(s.Mentions) > 0
}

// HasMedia reports whether the status carries attachments.
func (s *Status) HasMedia() bool {
	return s != nil && len(s.MediaAttachments) > 0
}

// Notification is an entry of the account's notification feed.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Account   Account   `json:"account"`
	Status    *Status   `json:"status"`
}

// StatusURL returns the URL of the notification's status, or an empty string.
func (n *Notification) StatusURL() string {
	if n.Status == nil {
		return ""
	}
	return n.Status.URL
}

// Context is the thread around a status.
type Context struct {
	Ancestors   []Status `json:"ancestors"`
	Descendants []Status `json:"descendants"`
}

// Visibility values accepted by PostStatus.
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
	VisibilityDirect   = "direct"
)

// NewStatus is the body of POST /api/v1/statuses.
type NewStatus struct {
	Status      string   `json:"status"`
	InReplyToID string   `json:"in_reply_to_id,omitempty"`
	MediaIDs    []string `json:"media_ids"`
	Sensitive   bool     `json:"sensitive"`
	SpoilerText string   `json:"spoiler_text"`
	Visibility  string   `json:"visibility"`
	Language    string   `json:"language,omitempty"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("mastodon API error (%d) on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("mastodon API error (%d) on %s %s", e.StatusCode, e.Method, e.Path)
}

// errorResponse is the body Mastodon returns alongside error statuses.
type errorResponse struct {
	Error string `json:"error"`
}
