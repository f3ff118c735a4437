// Package metrics exports workflow counters and session gauges in the
// Prometheus text format for the node exporter textfile collector.
package metrics

import (
	"errors"
	"time"

	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/core/signoff"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for signoff_operations_total.
const (
	OutcomeOK         = "ok"
	OutcomeNotFound   = "not_found"
	OutcomeInvalid    = "invalid"
	OutcomeBlocked    = "blocked"
	OutcomeTransition = "invalid_transition"
	OutcomeError      = "error"
)

// Collector records workflow operations and session statistics on its own
// registry.
type Collector struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	sessions   *prometheus.GaugeVec
	comments   *prometheus.GaugeVec
	lastRun    prometheus.Gauge
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signoff_operations_total",
				Help: "Workflow operations by name and outcome",
			},
			[]string{"operation", "outcome"},
		),
		sessions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signoff_sessions",
				Help: "Review sessions by status",
			},
			[]string{"status"},
		),
		comments: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signoff_comments",
				Help: "Review comments by state",
			},
			[]string{"state"}, // "total", "pending"
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "signoff_last_run_timestamp_seconds",
				Help: "Unix time the metrics were last written",
			},
		),
	}

	c.registry.MustRegister(c.operations, c.sessions, c.comments, c.lastRun)
	return c
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Operation counts one workflow operation, classifying err into an outcome.
func (c *Collector) Operation(op string, err error) {
	c.operations.WithLabelValues(op, Outcome(err)).Inc()
}

// Outcome maps an operation error onto its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, review.ErrNotFound), errors.Is(err, signoff.ErrMetadataNotFound):
		return OutcomeNotFound
	case errors.Is(err, review.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, signoff.ErrApprovalBlocked):
		return OutcomeBlocked
	case errors.Is(err, review.ErrInvalidTransition):
		return OutcomeTransition
	default:
		return OutcomeError
	}
}

// SetStatistics updates the session and comment gauges.
func (c *Collector) SetStatistics(st review.Statistics) {
	c.sessions.WithLabelValues(string(review.StatusDraft)).Set(float64(st.DraftSessions))
	c.sessions.WithLabelValues(string(review.StatusInReview)).Set(float64(st.InReviewSessions))
	c.sessions.WithLabelValues(string(review.StatusApproved)).Set(float64(st.ApprovedSessions))
	c.sessions.WithLabelValues(string(review.StatusRejected)).Set(float64(st.RejectedSessions))
	c.comments.WithLabelValues("total").Set(float64(st.TotalComments))
	c.comments.WithLabelValues("pending").Set(float64(st.PendingComments))
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (c *Collector) WriteTextfile(path string, now time.Time) error {
	c.lastRun.Set(float64(now.Unix()))
	return prometheus.WriteToTextfile(path, c.registry)
}
