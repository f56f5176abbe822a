package poll

import (
	"fmt"
	"strings"
	"time"

	"github.com/adamwoolhether/appchains/job"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by a [Poller].
// A nil *Metrics records nothing.
type Metrics struct {
	rounds *prometheus.CounterVec
	jobs   *prometheus.CounterVec
	wait   *prometheus.HistogramVec
}

// NewMetrics creates the poller collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appchains",
			Subsystem: "poll",
			Name:      "rounds_total",
			Help:      "Status queries issued for pending jobs.",
		}, []string{"mode"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appchains",
			Subsystem: "poll",
			Name:      "jobs_terminal_total",
			Help:      "Jobs observed in a terminal status, by outcome.",
		}, []string{"outcome"}),
		wait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "appchains",
			Subsystem: "poll",
			Name:      "wait_seconds",
			Help:      "Time spent polling until every job of a call was terminal.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"mode"}),
	}

	for _, c := range []prometheus.Collector{m.rounds, m.jobs, m.wait} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering poll metrics: %w", err)
		}
	}

	return m, nil
}

func (m *Metrics) round(mode string) {
	if m == nil {
		return
	}
	m.rounds.WithLabelValues(mode).Inc()
}

func (m *Metrics) terminal(raw job.Raw) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(outcome(raw)).Inc()
}

func (m *Metrics) observe(mode string, since time.Time) {
	if m == nil {
		return
	}
	m.wait.WithLabelValues(mode).Observe(time.Since(since).Seconds())
}

func outcome(raw job.Raw) string {
	switch {
	case strings.EqualFold(raw.Status, job.StatusCancelled):
		return "cancelled"
	case raw.Succeeded:
		return "succeeded"
	default:
		return "failed"
	}
}
