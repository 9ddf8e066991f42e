package intake

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/shaharia-lab/fedintake/internal/config"
	"github.com/shaharia-lab/fedintake/internal/idempotency"
	"github.com/shaharia-lab/fedintake/internal/mastodon"
	"github.com/shaharia-lab/fedintake/internal/window"
)

// Mode selects whether replies and cross-posts are sent.
type Mode int

const (
	// ModeLive handles notifications as they stream in.
	ModeLive Mode = iota
	// ModeReplay re-evaluates notifications that arrived while the bot was
	// offline. Nothing is posted; decisions are only logged.
	ModeReplay
)

func (m Mode) String() string {
	if m == ModeReplay {
		return "replay"
	}
	return "live"
}

// Outcome is the terminal state of one notification.
type Outcome string

const (
	OutcomeRejected  Outcome = "rejected"
	OutcomeLate      Outcome = "late"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeCompleted Outcome = "completed"
	OutcomeDryRun    Outcome = "dry_run"
	OutcomeFailed    Outcome = "failed"
)

// Event types published on the event bus.
const (
	EventPrefix       = "intake."
	EventStreamPrefix = "stream."
)

// streamEmptyNotification is published for notification events that carry
// no notification.
const streamEmptyNotification = "empty_notification"

// backlogExcludeTypes are skipped when fetching the backlog.
var backlogExcludeTypes = []string{"follow_request"}

// Config wires an Orchestrator.
type Config struct {
	App    *config.AppConfig
	Origin OriginClient
	Board  BoardClient
	// Events is optional. When set, every outcome is published.
	Events EventPublisher
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// Digest defaults to idempotency.SHA3Base64.
	Digest idempotency.Digest
}

// Orchestrator runs the intake pipeline for one notification at a time.
type Orchestrator struct {
	origin     OriginClient
	classifier *Classifier
	resolver   *Resolver
	engine     *window.Engine
	guard      *Guard
	publisher  *Publisher
	replier    *Replier
	events     EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

// New builds an Orchestrator and its pipeline stages from cfg.
func New(cfg Config) *Orchestrator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	app := cfg.App
	return &Orchestrator{
		origin:     cfg.Origin,
		classifier: NewClassifier(app.EventTag),
		resolver:   NewResolver(cfg.Origin),
		engine:     window.NewEngine(app.PhaseOffset, app.IssueOrigin),
		guard:      NewGuard(cfg.Origin),
		publisher:  NewPublisher(cfg.Board, app.OriginHost, app.BoardCommunityID),
		replier:    NewReplier(cfg.Origin, idempotency.NewDeriver(cfg.Digest, idempotency.DefaultLength)),
		events:     cfg.Events,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Run replays the backlog and then handles stream events in arrival order
// until ctx ends or events is closed. Subscribe to the stream before calling
// Run so that notifications arriving during the replay wait in the channel
// instead of racing it. Run is the only consumer; nothing is processed
// concurrently.
func (o *Orchestrator) Run(ctx context.Context, events <-chan mastodon.StreamEvent) error {
	o.ReplayBacklog(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			o.HandleStreamEvent(ctx, ev)
		}
	}
}

// ReplayBacklog processes the outstanding notifications in replay mode, in
// the order the instance returns them. A failed fetch abandons the sweep.
// It returns the number of notifications processed.
func (o *Orchestrator) ReplayBacklog(ctx context.Context) int {
	backlog, err := o.origin.ListNotifications(ctx, backlogExcludeTypes...)
	if err != nil {
		o.logger.Error("backlog fetch failed, skipping replay", "error", err)
		return 0
	}

	o.logger.Info("replaying backlog", "notifications", len(backlog))
	processed := 0
	for i := range backlog {
		if ctx.Err() != nil {
			break
		}
		o.Process(ctx, &backlog[i], ModeReplay)
		processed++
	}
	o.logger.Info("backlog replay finished", "processed", processed)
	return processed
}

// HandleStreamEvent logs lifecycle events and processes notifications live.
func (o *Orchestrator) HandleStreamEvent(ctx context.Context, ev mastodon.StreamEvent) {
	switch ev.Kind {
	case mastodon.StreamNotification:
		if ev.Notification != nil {
			o.Process(ctx, ev.Notification, ModeLive)
			return
		}
		o.logger.Warn("dropping stream notification without payload")
		o.publish(EventStreamPrefix+streamEmptyNotification, map[string]string{})
		return
	case mastodon.StreamDisconnected:
		o.logger.Warn("stream disconnected", "error", ev.Err)
	default:
		o.logger.Debug("stream " + ev.Kind.String())
	}
	o.publish(EventStreamPrefix+ev.Kind.String(), map[string]string{})
}

// Process runs the full pipeline for n and returns its outcome. Upstream
// failures end the pipeline for n and are logged, never returned.
func (o *Orchestrator) Process(ctx context.Context, n *mastodon.Notification, mode Mode) Outcome {
	log := o.logger.With(
		"trace_id", uuid.NewString(),
		"notification_id", n.ID,
		"mode", mode.String(),
	)
	payload := map[string]string{
		"notification_id": n.ID,
		"mode":            mode.String(),
		"status_url":      n.StatusURL(),
	}
	finish := func(out Outcome) Outcome {
		o.publish(EventPrefix+string(out), payload)
		return out
	}

	verdict := o.classifier.Classify(n)
	if !verdict.Accepted {
		log.Info("notification is not a submission", "reason", string(verdict.Reason), "status_url", n.StatusURL())
		payload["reason"] = string(verdict.Reason)
		return finish(OutcomeRejected)
	}

	res := o.resolver.Resolve(ctx, n)
	switch res.Source {
	case SourceFallback:
		log.Info("tracing failed, falling back to the mention", "status_url", n.Status.URL, "error", res.Err)
	case SourceNoParent:
		log.Info("no media and no parent, falling back to the mention", "status_url", n.Status.URL)
	case SourceAncestor:
		log.Debug("traced submission to parent", "target_url", res.Target.Status.URL)
	}
	target := res.Target

	issue := o.engine.Evaluate(target.Status.CreatedAt, o.now())
	payload["issue_id"] = strconv.FormatInt(issue.ID, 10)
	log = log.With("issue_id", issue.ID, "target_url", target.Status.URL)

	if issue.Late {
		log.Debug("submission past deadline", "deadline", issue.Deadline, "created_at", target.Status.CreatedAt)
		if mode == ModeReplay {
			log.Debug("skipped replying during replay")
			return finish(OutcomeLate)
		}
		if err := o.replier.Reject(ctx, n, target, issue); err != nil {
			log.Error("rejection reply failed", "error", err)
			return finish(OutcomeFailed)
		}
		return finish(OutcomeLate)
	}

	log.Debug("submission on time", "mention_url", n.Status.URL)
	if mode == ModeReplay {
		log.Debug("skipped cross-posting and replying during replay")
		return finish(OutcomeDryRun)
	}

	handled, err := o.guard.AlreadyHandled(ctx, n.Status.ID)
	if err != nil {
		log.Warn("reply check failed, proceeding", "error", err)
	}
	if handled {
		log.Debug("thread already replied, ignoring")
		return finish(OutcomeDuplicate)
	}

	permalink, err := o.publisher.Publish(ctx, target, n.Account, issue.ID)
	if err != nil {
		log.Error("cross-post failed", "error", err)
		return finish(OutcomeFailed)
	}
	payload["permalink"] = permalink
	log.Info("submission cross-posted", "permalink", permalink)

	if err := o.replier.Confirm(ctx, n, target, permalink); err != nil {
		log.Error("confirmation reply failed after cross-post", "error", err, "permalink", permalink)
		return finish(OutcomeFailed)
	}
	return finish(OutcomeCompleted)
}

// Window exposes the issue engine so other components share one numbering.
func (o *Orchestrator) Window() *window.Engine {
	return o.engine
}

func (o *Orchestrator) publish(eventType string, payload map[string]string) {
	if o.events == nil {
		return
	}
	o.events.Publish(eventType, payload)
}
