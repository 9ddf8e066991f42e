package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaharia-lab/fedintake/internal/mastodon"
)

// ResolveSource records where a Target came from.
type ResolveSource string

const (
	// SourceSelf: the mention carries media and is the submission.
	SourceSelf ResolveSource = "self"
	// SourceAncestor: the mention replies to the submission.
	SourceAncestor ResolveSource = "ancestor"
	// SourceNoParent: no media and no parent; the mention is used as is.
	SourceNoParent ResolveSource = "no_parent"
	// SourceFallback: fetching the parent failed or returned an unusable
	// status; the mention is used as is.
	SourceFallback ResolveSource = "fallback"
)

// Resolution is the resolved Target. Err is set only for SourceFallback.
type Resolution struct {
	Target Target
	Source ResolveSource
	Err    error
}

// Resolver finds the post a mention submits, looking one level up the
// reply chain when the mention has no media of its own.
type Resolver struct {
	origin OriginClient
}

// NewResolver returns a Resolver fetching parents from origin.
func NewResolver(origin OriginClient) *Resolver {
	return &Resolver{origin: origin}
}

// Resolve never fails: when the parent cannot be fetched the mention itself
// becomes the Target.
func (r *Resolver) Resolve(ctx context.Context, n *mastodon.Notification) Resolution {
	self := Target{Account: n.Account, Status: n.Status}

	if n.Status.HasMedia() {
		return Resolution{Target: self, Source: SourceSelf}
	}
	if n.Status.InReplyToID == nil || *n.Status.InReplyToID == "" {
		return Resolution{Target: self, Source: SourceNoParent}
	}

	parent, err := r.origin.GetStatus(ctx, *n.Status.InReplyToID)
	if err == nil {
		err = checkParent(parent)
	}
	if err != nil {
		return Resolution{Target: self, Source: SourceFallback, Err: err}
	}
	return Resolution{
		Target: Target{Account: parent.Account, Status: parent},
		Source: SourceAncestor,
	}
}

// checkParent rejects a parent missing the fields the deadline check and the
// reply key are derived from.
func checkParent(parent *mastodon.Status) error {
	switch {
	case parent == nil:
		return errors.New("parent status response was empty")
	case parent.ID == "":
		return errors.New("parent status has no id")
	case parent.CreatedAt.IsZero():
		return fmt.Errorf("parent status %s has no created_at", parent.ID)
	case parent.Account.Acct == "":
		return fmt.Errorf("parent status %s has no account", parent.ID)
	}
	return nil
}
