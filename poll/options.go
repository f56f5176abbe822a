package poll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// DefaultInterval is the pause between two status queries of a pending job.
const DefaultInterval = time.Second

// SleepFunc suspends the poll loop for d. It must return early with the
// context's error once ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc, backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Option is a functional option for configuring a [Poller] via [New].
type Option func(*options) error

type options struct {
	interval *time.Duration
	sleep    SleepFunc
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
}

// WithInterval overrides [DefaultInterval].
func WithInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return errors.New("interval must be greater than zero")
		}
		o.interval = &d
		return nil
	}
}

// WithSleep replaces the timer-based [Sleep], letting tests advance
// the loop without waiting.
func WithSleep(fn SleepFunc) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("sleep func must not be nil")
		}
		o.sleep = fn
		return nil
	}
}

// WithLogger injects a custom [slog.Logger].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithMetrics records rounds and terminal outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithTracer sets the tracer used for poll spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}
