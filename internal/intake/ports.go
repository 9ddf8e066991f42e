// Package intake turns mention notifications into weekly event submissions:
// it classifies them, resolves the submitted post, checks the deadline,
// cross-posts accepted work to the community board and acknowledges the
// submitter with a direct reply.
package intake

import (
	"context"

	"github.com/shaharia-lab/fedintake/internal/lemmy"
	"github.com/shaharia-lab/fedintake/internal/mastodon"
)

// OriginClient is the part of the origin instance API the pipeline uses.
type OriginClient interface {
	GetStatus(ctx context.Context, id string) (*mastodon.Status, error)
	GetContext(ctx context.Context, id string) (*mastodon.Context, error)
	PostStatus(ctx context.Context, status mastodon.NewStatus, idempotencyKey string) (*mastodon.Status, error)
	ListNotifications(ctx context.Context, excludeTypes ...string) ([]mastodon.Notification, error)
}

// BoardClient creates posts on the community board.
type BoardClient interface {
	CreatePost(ctx context.Context, req lemmy.CreatePostRequest) (*lemmy.PostResponse, error)
}

// EventPublisher lets the pipeline announce outcomes without depending on a
// concrete event bus implementation.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
}

// Target is the post being submitted and its author. It is either the
// mention itself or the status the mention replies to.
type Target struct {
	Account mastodon.Account
	Status  *mastodon.Status
}
