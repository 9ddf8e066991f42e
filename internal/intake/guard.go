package intake

import (
	"context"
	"fmt"
)

// Guard detects threads that already carry a reply so a submission is not
// cross-posted twice. The origin instance is the only source of truth; no
// local record of handled statuses is kept.
type Guard struct {
	origin OriginClient
}

// NewGuard returns a Guard querying origin.
func NewGuard(origin OriginClient) *Guard {
	return &Guard{origin: origin}
}

// AlreadyHandled reports whether the mention's thread has any descendant.
// On a failed lookup it returns false along with the error: callers proceed
// rather than drop a submission.
func (g *Guard) AlreadyHandled(ctx context.Context, mentionStatusID string) (bool, error) {
	tc, err := g.origin.GetContext(ctx, mentionStatusID)
	if err != nil {
		return false, fmt.Errorf("fetching context of %s: %w", mentionStatusID, err)
	}
	return len(tc.Descendants) > 0, nil
}
