package intake_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/fedintake/internal/intake"
	"github.com/shaharia-lab/fedintake/internal/intake/mocks"
	"github.com/shaharia-lab/fedintake/internal/lemmy"
	"github.com/shaharia-lab/fedintake/internal/mastodon"
)

func TestQualifyHandle(t *testing.T) {
	assert.Equal(t, "artist@pony.social", intake.QualifyHandle("artist", "pony.social"))
	assert.Equal(t, "artist@other.example", intake.QualifyHandle("artist@other.example", "pony.social"))
}

func TestPublish(t *testing.T) {
	board := &mocks.MockBoardClient{}
	p := intake.NewPublisher(board, originHost, 7)

	target := intake.Target{
		Account: mastodon.Account{Acct: "artist"},
		Status: &mastodon.Status{
			ID:  "99",
			URL: "https://pony.social/@artist/99",
			MediaAttachments: []mastodon.MediaAttachment{
				{PreviewURL: "https://cdn/1.png"},
				{PreviewURL: "https://cdn/2.png"},
			},
		},
	}

	var got lemmy.CreatePostRequest
	board.On("CreatePost", mock.Anything, mock.AnythingOfType("lemmy.CreatePostRequest")).
		Run(func(args mock.Arguments) { got = args.Get(1).(lemmy.CreatePostRequest) }).
		Return(boardResponse("https://board.example/post/3"), nil)

	link, err := p.Publish(context.Background(), target, mastodon.Account{Acct: "fan@far.example"}, 93)
	require.NoError(t, err)
	assert.Equal(t, "https://board.example/post/3", link)

	assert.Equal(t, 7, got.CommunityID)
	assert.Equal(t, "https://pony.social/@artist/99", got.URL)
	assert.Equal(t, "Artwork by @artist@pony.social", got.Name)
	assert.Equal(t,
		"![](https://cdn/1.png)\n\n"+
			"![](https://cdn/2.png)\n\n"+
			"*(Submitted by `@fan@far.example`)*\n\n"+
			"*If not denied, this submission should appear in issue 93.*",
		got.Body)
	board.AssertNumberOfCalls(t, "CreatePost", 1)
}

func TestPublish_ZeroAttachments(t *testing.T) {
	p := intake.NewPublisher(&mocks.MockBoardClient{}, originHost, 7)
	target := intake.Target{
		Account: mastodon.Account{Acct: "artist"},
		Status:  &mastodon.Status{ID: "1", CreatedAt: time.Now()},
	}

	body := p.Body(target, mastodon.Account{Acct: "artist"}, 5)
	assert.Equal(t,
		"*(Submitted by `@artist@pony.social`)*\n\n*If not denied, this submission should appear in issue 5.*",
		body)
}

func TestPublish_BoardError(t *testing.T) {
	board := &mocks.MockBoardClient{}
	board.On("CreatePost", mock.Anything, mock.Anything).Return(nil, errors.New("502"))

	p := intake.NewPublisher(board, originHost, 7)
	_, err := p.Publish(context.Background(), intake.Target{Status: &mastodon.Status{URL: "u"}}, mastodon.Account{}, 1)
	assert.ErrorContains(t, err, "cross-posting u")
	board.AssertNumberOfCalls(t, "CreatePost", 1)
}
