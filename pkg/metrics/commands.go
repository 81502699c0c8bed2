package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CommandMetrics records timing and outcome counts per store command. The
// embedding application decides whether and how the registry is exported;
// the store itself never opens a network listener.
type CommandMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewCommandMetrics registers the command metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCommandMetrics(reg prometheus.Registerer) *CommandMetrics {
	if reg == nil {
		return &CommandMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_command_duration_seconds",
		Help:    "Duration of store commands in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_command_success",
		Help: "Successful store command executions.",
	}, []string{"command"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_command_failure",
		Help: "Failed store command executions.",
	}, []string{"command", "code"})
	reg.MustRegister(duration, success, failure)
	return &CommandMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named command.
func (c *CommandMetrics) ObserveDuration(command string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(command)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named command.
func (c *CommandMetrics) IncSuccess(command string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(command)).Inc()
}

// IncFailure increments the failure counter for the named command and error code.
func (c *CommandMetrics) IncFailure(command, code string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(command), normalizeLabel(code)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
