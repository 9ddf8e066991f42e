// Package metrics exposes intake outcomes and the current issue as
// Prometheus series.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaharia-lab/fedintake/internal/eventbus"
	"github.com/shaharia-lab/fedintake/internal/intake"
	"github.com/shaharia-lab/fedintake/internal/window"
)

const namespace = "fedintake"

// Recorder owns a private registry so tests and multiple instances never
// collide on the global one.
type Recorder struct {
	registry      *prometheus.Registry
	notifications *prometheus.CounterVec
	streamEvents  *prometheus.CounterVec
	crossPosts    prometheus.Counter
	issueID       prometheus.Gauge
	deadline      prometheus.Gauge
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications processed, by outcome and mode.",
		}, []string{"outcome", "mode"}),
		streamEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "User stream lifecycle events, by kind.",
		}, []string{"kind"}),
		crossPosts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cross_posts_total",
			Help:      "Submissions published to the board.",
		}),
		issueID: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_issue_id",
			Help:      "Issue currently accepting submissions.",
		}),
		deadline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_issue_deadline_seconds",
			Help:      "Unix time of the current issue's deadline.",
		}),
	}
	r.registry.MustRegister(
		r.notifications,
		r.streamEvents,
		r.crossPosts,
		r.issueID,
		r.deadline,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Listener returns an eventbus listener that counts intake and stream events.
func (r *Recorder) Listener() eventbus.Listener {
	return func(e eventbus.Event) {
		switch {
		case strings.HasPrefix(e.Type, intake.EventPrefix):
			outcome := strings.TrimPrefix(e.Type, intake.EventPrefix)
			r.notifications.WithLabelValues(outcome, e.Payload["mode"]).Inc()
			if e.Payload["permalink"] != "" {
				r.crossPosts.Inc()
			}
		case strings.HasPrefix(e.Type, intake.EventStreamPrefix):
			r.streamEvents.WithLabelValues(strings.TrimPrefix(e.Type, intake.EventStreamPrefix)).Inc()
		}
	}
}

// SetIssue records the issue currently open for submissions.
func (r *Recorder) SetIssue(issue window.Issue) {
	r.issueID.Set(float64(issue.ID))
	r.deadline.Set(float64(issue.Deadline.Unix()))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

