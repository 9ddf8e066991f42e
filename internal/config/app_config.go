package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// WindowConfig fixes where weekly issues start and how they are numbered.
type WindowConfig struct {
	// PhaseOffset shifts the weekly boundary. The default puts the cutoff
	// at Saturday 18:00 UTC.
	PhaseOffset time.Duration `envconfig:"WINDOW_PHASE_OFFSET" default:"102h"`

	// IssueOrigin is subtracted from the raw week number to obtain the issue id.
	IssueOrigin int64 `envconfig:"ISSUE_ORIGIN" default:"2818"`
}

// LoadWindow reads only the issue window settings, for commands that do not
// talk to any instance.
func LoadWindow() (*WindowConfig, error) {
	var w WindowConfig
	if err := envconfig.Process("", &w); err != nil {
		return nil, fmt.Errorf("loading window config: %w", err)
	}
	return &w, nil
}

// AppConfig holds all application-level configuration loaded from environment variables.
// It is read once at startup and passed by pointer into every component; nothing
// mutates it afterwards.
type AppConfig struct {
	// OriginHost is the Mastodon-compatible instance the curator account lives on.
	OriginHost string `envconfig:"ORIGIN_INSTANCE_HOST" required:"true"`

	// OriginToken is the bearer token of the curator account.
	OriginToken string `envconfig:"ORIGIN_TOKEN" required:"true"`

	// OriginScheme is the URL scheme used to reach the origin instance.
	OriginScheme string `envconfig:"ORIGIN_SCHEME" default:"https"`

	// BoardHost is the Lemmy-compatible instance hosting the community board.
	BoardHost string `envconfig:"BOARD_INSTANCE_HOST" required:"true"`

	// BoardToken is the JWT used to create posts on the board.
	BoardToken string `envconfig:"BOARD_TOKEN" required:"true"`

	// BoardScheme is the URL scheme used to reach the board instance.
	BoardScheme string `envconfig:"BOARD_SCHEME" default:"https"`

	// BoardCommunityID is the numeric id of the community accepted submissions go to.
	BoardCommunityID int `envconfig:"BOARD_COMMUNITY_ID" required:"true"`

	// EventTag is the hashtag (without '#') that marks a post as a submission.
	EventTag string `envconfig:"EVENT_TAG" default:"weeklypony"`

	WindowConfig

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogFile, when set, sends JSON logs to a rotated file instead of stderr.
	LogFile string `envconfig:"LOG_FILE"`

	// MetricsAddr is the listen address for /health and /metrics. Empty disables it.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9464"`
}

// Load reads AppConfig from environment variables using envconfig.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the values envconfig cannot express as struct tags.
func (c *AppConfig) Validate() error {
	if c.BoardCommunityID <= 0 {
		return fmt.Errorf("invalid config: BOARD_COMMUNITY_ID must be positive, got %d", c.BoardCommunityID)
	}
	if strings.TrimSpace(c.EventTag) == "" {
		return fmt.Errorf("invalid config: EVENT_TAG must not be empty")
	}
	if strings.Contains(c.OriginHost, "/") || strings.Contains(c.BoardHost, "/") {
		return fmt.Errorf("invalid config: instance hosts must be bare host names")
	}
	return nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OriginBaseURL returns the scheme and host of the origin instance.
func (c *AppConfig) OriginBaseURL() string {
	return c.OriginScheme + "://" + c.OriginHost
}

// BoardBaseURL returns the scheme and host of the board instance.
func (c *AppConfig) BoardBaseURL() string {
	return c.BoardScheme + "://" + c.BoardHost
}
