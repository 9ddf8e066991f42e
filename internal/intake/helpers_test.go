package intake_test

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shaharia-lab/fedintake/internal/config"
	"github.com/shaharia-lab/fedintake/internal/lemmy"
	"github.com/shaharia-lab/fedintake/internal/mastodon"
	"github.com/shaharia-lab/fedintake/internal/window"
)

const originHost = "pony.social"

func testApp() *config.AppConfig {
	return &config.AppConfig{
		OriginHost:       originHost,
		BoardHost:        "board.example",
		BoardCommunityID: 7,
		EventTag:         "weeklypony",
		WindowConfig: config.WindowConfig{
			PhaseOffset: 102 * time.Hour,
			IssueOrigin: 2818,
		},
	}
}

func testEngine() *window.Engine {
	app := testApp()
	return window.NewEngine(app.PhaseOffset, app.IssueOrigin)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

// mention builds a tagged mention with a single attachment.
func mention(id string, createdAt time.Time) *mastodon.Notification {
	return &mastodon.Notification{
		ID:      "n-" + id,
		Type:    mastodon.NotificationMention,
		Account: mastodon.Account{ID: "a1", Acct: "submitter"},
		Status: &mastodon.Status{
			ID:        id,
			URL:       "https://pony.social/@submitter/" + id,
			CreatedAt: createdAt,
			Account:   mastodon.Account{ID: "a1", Acct: "submitter"},
			Mentions:  []mastodon.Mention{{ID: "bot", Acct: "curator"}},
			Tags:      []mastodon.Tag{{Name: "WeeklyPony"}},
			MediaAttachments: []mastodon.MediaAttachment{
				{ID: "m1", PreviewURL: "https://cdn.pony.social/p/" + id + ".png"},
			},
		},
	}
}

func boardResponse(apID string) *lemmy.PostResponse {
	return &lemmy.PostResponse{PostView: lemmy.PostView{Post: lemmy.Post{ID: 1, APID: apID}}}
}

type publishedEvent struct {
	Type    string
	Payload map[string]string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingPublisher) Publish(eventType string, payload map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{Type: eventType, Payload: payload})
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
