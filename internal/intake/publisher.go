package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/shaharia-lab/fedintake/internal/lemmy"
	"github.com/shaharia-lab/fedintake/internal/mastodon"
)

// QualifyHandle appends @host to handles local to the origin instance.
func QualifyHandle(acct, host string) string {
	if strings.Contains(acct, "@") {
		return acct
	}
	return acct + "@" + host
}

// Publisher cross-posts accepted submissions to the community board.
type Publisher struct {
	board       BoardClient
	originHost  string
	communityID int
}

// NewPublisher returns a Publisher posting to communityID through board.
func NewPublisher(board BoardClient, originHost string, communityID int) *Publisher {
	return &Publisher{board: board, originHost: originHost, communityID: communityID}
}

// Body renders the board post text: one image line per attachment in order,
// then attribution and the expected issue.
func (p *Publisher) Body(target Target, submitter mastodon.Account, issueID int64) string {
	lines := make([]string, 0, len(target.Status.MediaAttachments)+2)
	for _, m := range target.Status.MediaAttachments {
		lines = append(lines, fmt.Sprintf("![](%s)", m.PreviewURL))
	}
	lines = append(lines,
		fmt.Sprintf("*(Submitted by `@%s`)*", QualifyHandle(submitter.Acct, p.originHost)),
		fmt.Sprintf("*If not denied, this submission should appear in issue %d.*", issueID),
	)
	return strings.Join(lines, "\n\n")
}

// Title names the target's author.
func (p *Publisher) Title(target Target) string {
	return "Artwork by @" + QualifyHandle(target.Account.Acct, p.originHost)
}

// Publish creates the board post and returns its permalink. It must be
// called at most once per submission: the board does not deduplicate.
func (p *Publisher) Publish(ctx context.Context, target Target, submitter mastodon.Account, issueID int64) (string, error) {
	resp, err := p.board.CreatePost(ctx, lemmy.CreatePostRequest{
		CommunityID: p.communityID,
		URL:         target.Status.URL,
		Name:        p.Title(target),
		Body:        p.Body(target, submitter, issueID),
	})
	if err != nil {
		return "", fmt.Errorf("cross-posting %s: %w", target.Status.URL, err)
	}
	return resp.PostView.Post.APID, nil
}
