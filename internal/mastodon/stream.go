package mastodon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shaharia-lab/fedintake/internal/build"
)

// StreamEventKind identifies the kind of a StreamEvent.
type StreamEventKind int

const (
	StreamConnecting StreamEventKind = iota
	StreamOpen
	StreamDisconnected
	StreamClosed
	StreamNotification
)

func (k StreamEventKind) String() string {
	switch k {
	case StreamConnecting:
		return "connecting"
	case StreamOpen:
		return "open"
	case StreamDisconnected:
		return "disconnect"
	case StreamClosed:
		return "close"
	case StreamNotification:
		return "notification"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// StreamEvent is one item of the user stream: either a lifecycle change or a
// decoded notification.
type StreamEvent struct {
	Kind         StreamEventKind
	Notification *Notification
	// Err is the cause of a StreamDisconnected event, if any.
	Err error
}

const (
	defaultStreamBuffer = 256
	defaultMinBackoff   = time.Second
	defaultMaxBackoff   = time.Minute
)

// Streamer subscribes to /api/v1/streaming/user over server-sent events and
// reconnects with capped exponential backoff until its context ends.
type Streamer struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	buffer     int
	minBackoff time.Duration
	maxBackoff time.Duration
}

// StreamOption customizes a Streamer.
type StreamOption func(*Streamer)

// WithBackoff sets the reconnect delay bounds.
func WithBackoff(minDelay, maxDelay time.Duration) StreamOption {
	return func(s *Streamer) {
		s.minBackoff = minDelay
		s.maxBackoff = maxDelay
	}
}

// WithBuffer sets how many events may queue before the reader blocks.
func WithBuffer(n int) StreamOption {
	return func(s *Streamer) { s.buffer = n }
}

// NewStreamer returns a Streamer for the instance at baseURL.
func NewStreamer(baseURL, token string, logger *slog.Logger, opts ...StreamOption) *Streamer {
	s := &Streamer{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		// No client timeout: the response body stays open for the life of the stream.
		httpClient: &http.Client{},
		logger:     logger,
		buffer:     defaultStreamBuffer,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe starts streaming in a goroutine and returns the ordered event
// channel. The channel is closed after a StreamClosed event once ctx ends.
func (s *Streamer) Subscribe(ctx context.Context) <-chan StreamEvent {
	out := make(chan StreamEvent, s.buffer)
	go s.run(ctx, out)
	return out
}

func (s *Streamer) run(ctx context.Context, out chan<- StreamEvent) {
	defer close(out)

	backoff := s.minBackoff
	for {
		if !s.emit(ctx, out, StreamEvent{Kind: StreamConnecting}) {
			break
		}
		opened, err := s.stream(ctx, out)
		if ctx.Err() != nil {
			break
		}
		if opened {
			backoff = s.minBackoff
		}
		if !s.emit(ctx, out, StreamEvent{Kind: StreamDisconnected, Err: err}) {
			break
		}

		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
		if ctx.Err() != nil {
			break
		}
		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}

	// Best effort: the consumer may already have stopped reading.
	select {
	case out <- StreamEvent{Kind: StreamClosed}:
	default:
	}
}

func (s *Streamer) emit(ctx context.Context, out chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// stream holds one connection open and forwards its events. It reports
// whether the server accepted the subscription.
func (s *Streamer) stream(ctx context.Context, out chan<- StreamEvent) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/v1/streaming/user", nil)
	if err != nil {
		return false, fmt.Errorf("creating stream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", build.UserAgent())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("opening stream: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return false, &APIError{StatusCode: resp.StatusCode, Method: http.MethodGet, Path: "/api/v1/streaming/user"}
	}
	if !s.emit(ctx, out, StreamEvent{Kind: StreamOpen}) {
		return true, ctx.Err()
	}

	err = readEvents(resp.Body, func(name, data string) bool {
		if name != "notification" {
			return true
		}
		var n Notification
		if err := json.Unmarshal([]byte(data), &n); err != nil {
			s.logger.Warn("dropping undecodable stream notification", "error", err)
			return true
		}
		return s.emit(ctx, out, StreamEvent{Kind: StreamNotification, Notification: &n})
	})
	return true, err
}

// readEvents parses a server-sent event stream and calls dispatch for each
// complete event. Dispatch returning false stops reading.
func readEvents(r io.Reader, dispatch func(name, data string) bool) error {
	br := bufio.NewReader(r)
	var (
		name string
		data []string
	)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return fmt.Errorf("reading stream: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if len(data) > 0 {
				if name == "" {
					name = "message"
				}
				if !dispatch(name, strings.Join(data, "\n")) {
					return nil
				}
			}
			name, data = "", nil
		case strings.HasPrefix(line, ":"):
			// heartbeat comment
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				name = value
			case "data":
				data = append(data, value)
			}
		}
	}
}
