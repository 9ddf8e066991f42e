package intake

import (
	"context"
	"fmt"

	"github.com/shaharia-lab/fedintake/internal/idempotency"
	"github.com/shaharia-lab/fedintake/internal/mastodon"
	"github.com/shaharia-lab/fedintake/internal/window"
)

const replyLanguage = "en"

// RejectionText tells the submitter the post missed the cutoff of issue.
func RejectionText(issue window.Issue) string {
	return fmt.Sprintf(
		"Sorry, but the submission is way past the deadline for issue %d. "+
			"Submissions must be posted after %s UTC+0 %s to be accepted for the ongoing issue.",
		issue.ID, issue.DeadlineClock(), issue.DeadlineDate(),
	)
}

// ConfirmationText tells the submitter where the cross-post went.
func ConfirmationText(submitterAcct, authorAcct, permalink string) string {
	return fmt.Sprintf("@%s\nWork by @%s has successfully been submitted!\nBoard URL: %s",
		submitterAcct, authorAcct, permalink)
}

// Replier sends direct replies to the mention. Every reply carries an
// Idempotency-Key derived from the target so redelivery is collapsed by the
// origin instance.
type Replier struct {
	origin OriginClient
	keys   *idempotency.Deriver
}

// NewReplier returns a Replier posting through origin.
func NewReplier(origin OriginClient, keys *idempotency.Deriver) *Replier {
	return &Replier{origin: origin, keys: keys}
}

// Reject replies to the mention that target missed the deadline of issue.
func (r *Replier) Reject(ctx context.Context, mention *mastodon.Notification, target Target, issue window.Issue) error {
	return r.reply(ctx, mention.Status.ID, RejectionText(issue), target)
}

// Confirm replies to the mention with the cross-post permalink.
func (r *Replier) Confirm(ctx context.Context, mention *mastodon.Notification, target Target, permalink string) error {
	return r.reply(ctx, mention.Status.ID, ConfirmationText(mention.Account.Acct, target.Account.Acct, permalink), target)
}

func (r *Replier) reply(ctx context.Context, inReplyToID, text string, target Target) error {
	key := r.keys.Derive(target.Account.Acct, target.Status.ID)
	_, err := r.origin.PostStatus(ctx, mastodon.NewStatus{
		Status:      text,
		InReplyToID: inReplyToID,
		MediaIDs:    []string{},
		Sensitive:   false,
		SpoilerText: "",
		Visibility:  mastodon.VisibilityDirect,
		Language:    replyLanguage,
	}, key)
	if err != nil {
		return fmt.Errorf("replying to %s: %w", inReplyToID, err)
	}
	return nil
}
