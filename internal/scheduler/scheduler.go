// Package scheduler keeps track of which weekly issue is open and announces
// when it rolls over.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/shaharia-lab/fedintake/internal/window"
)

// EventPublisher allows the scheduler to emit events without depending on a
// concrete event bus implementation.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
}

// IssueObserver receives the open issue on every tick.
type IssueObserver interface {
	SetIssue(issue window.Issue)
}

// EventIssueRollover is published when a new issue opens.
const EventIssueRollover = "window.issue_rollover"

const defaultInterval = time.Minute

// Config holds the scheduler configuration.
type Config struct {
	Engine *window.Engine
	Logger *slog.Logger
	// Interval between checks. Defaults to one minute.
	Interval time.Duration
	// Observer is optional. When set, it is updated on every tick.
	Observer IssueObserver
	// EventPublisher is optional. When set, rollovers are published.
	EventPublisher EventPublisher
	// Now defaults to time.Now.
	Now func() time.Time
}

// Scheduler runs the issue watcher on a gocron scheduler.
type Scheduler struct {
	cron    gocron.Scheduler
	cfg     Config
	logger  *slog.Logger
	mu      sync.Mutex
	current int64
	seen    bool
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("scheduler requires a window engine")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	return &Scheduler{
		cron:   cron,
		cfg:    cfg,
		logger: cfg.Logger,
	}, nil
}

// Start registers the watcher job and starts the gocron scheduler. The first
// check runs immediately.
func (s *Scheduler) Start(_ context.Context) error {
	_, err := s.cron.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(s.tick),
		gocron.WithName("issue-watcher"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("scheduling issue watcher: %w", err)
	}

	s.cron.Start()
	s.logger.Info("issue watcher started", "interval", s.cfg.Interval)
	return nil
}

// Stop shuts down the gocron scheduler.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// Current returns the last observed issue id and whether any tick has run.
func (s *Scheduler) Current() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.seen
}

func (s *Scheduler) tick() {
	issue := s.cfg.Engine.Current(s.cfg.Now())
	if s.cfg.Observer != nil {
		s.cfg.Observer.SetIssue(issue)
	}

	s.mu.Lock()
	prev, seen := s.current, s.seen
	s.current, s.seen = issue.ID, true
	s.mu.Unlock()

	if seen && prev == issue.ID {
		return
	}
	if !seen {
		s.logger.Info("accepting submissions",
			"issue_id", issue.ID,
			"deadline", issue.Deadline,
			"closes", s.cfg.Engine.Closes(issue.ID))
		return
	}

	s.logger.Info("issue rolled over",
		"previous_issue_id", prev,
		"issue_id", issue.ID,
		"deadline", issue.Deadline)
	if s.cfg.EventPublisher != nil {
		s.cfg.EventPublisher.Publish(EventIssueRollover, map[string]string{
			"previous_issue_id": strconv.FormatInt(prev, 10),
			"issue_id":          strconv.FormatInt(issue.ID, 10),
		})
	}
}
