package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adamwoolhether/appchains/job"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/adamwoolhether/appchains/poll"

// QueryFunc fetches the current status of one job.
type QueryFunc func(ctx context.Context, id job.ID) (job.Raw, error)

// BatchQueryFunc fetches the current status of several jobs in one call.
// Each returned status carries its own job id; order is not significant.
type BatchQueryFunc func(ctx context.Context, ids []job.ID) ([]job.Raw, error)

// Poller repeats status queries at a fixed interval until jobs reach a
// terminal status. It holds no per-call state and is safe for concurrent use.
type Poller struct {
	interval time.Duration
	sleep    SleepFunc
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
}

// New builds a Poller. Without options it waits [DefaultInterval] between
// queries using [Sleep].
func New(optFns ...Option) (*Poller, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying poll option: %w", err)
		}
	}

	p := &Poller{
		interval: DefaultInterval,
		sleep:    Sleep,
		logger:   slog.Default(),
		metrics:  opts.metrics,
		tracer:   otel.Tracer(instrumentationName),
	}

	if opts.interval != nil {
		p.interval = *opts.interval
	}
	if opts.sleep != nil {
		p.sleep = opts.sleep
	}
	if opts.logger != nil {
		p.logger = opts.logger
	}
	if opts.tracer != nil {
		p.tracer = opts.tracer
	}

	return p, nil
}

// Interval returns the pause between two status queries.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Wait returns first if it is already terminal. Otherwise it pauses,
// queries the job by id and repeats until the job completes or ctx ends.
func (p *Poller) Wait(ctx context.Context, first job.Raw, query QueryFunc) (job.Raw, error) {
	ctx, span := p.tracer.Start(ctx, "poll.wait", trace.WithAttributes(attribute.String("job.id", first.ID.String())))
	defer span.End()

	start := time.Now()
	raw := first

	for attempt := 1; !raw.Completed; attempt++ {
		if err := p.pause(ctx); err != nil {
			return job.Raw{}, err
		}

		p.metrics.round("single")

		next, err := query(ctx, raw.ID)
		if err != nil {
			return job.Raw{}, p.abort(ctx, fmt.Errorf("querying job[%s]: %w", raw.ID, err))
		}

		if next.ID != raw.ID {
			return job.Raw{}, &CorrelationError{JobID: next.ID, Detail: fmt.Sprintf("status query for job[%s] answered by another job", raw.ID)}
		}

		p.logger.Debug("job status", "job", raw.ID, "status", next.Status, "attempt", attempt)
		raw = next
	}

	span.SetAttributes(attribute.String("job.status", raw.Status), attribute.Bool("job.succeeded", raw.Succeeded))
	p.metrics.terminal(raw)
	p.metrics.observe("single", start)
	p.logger.Info("job terminal", "job", raw.ID, "status", raw.Status, "succeeded", raw.Succeeded, "since", time.Since(start).String())

	return raw, nil
}

// pause sleeps one interval and reports whether polling may continue.
func (p *Poller) pause(ctx context.Context) error {
	if err := p.sleep(ctx, p.interval); err != nil {
		return p.abort(ctx, fmt.Errorf("waiting for next poll: %w", err))
	}

	// A custom SleepFunc may ignore ctx.
	if err := ctx.Err(); err != nil {
		return p.abort(ctx, fmt.Errorf("poll context ended: %w", err))
	}

	return nil
}

// abort tags err with ErrPollTimeout when ctx's deadline has passed.
func (p *Poller) abort(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrPollTimeout, err)
	}
	return err
}
