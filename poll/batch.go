package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/adamwoolhether/appchains/job"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// WaitBatch follows every job in first until all are terminal and returns
// the terminal status of each job under its correlation key.
//
// Each round splits the current statuses into terminal and pending. The
// pending ids are sent in one batch query; every returned status is matched
// back to its key through the round's pending set. A status for an id that
// is not pending, an id returned twice, or a pending id missing from the
// response fails the whole call with a [CorrelationError].
func (p *Poller) WaitBatch(ctx context.Context, first []job.Keyed, query BatchQueryFunc) (map[string]job.Raw, error) {
	ctx, span := p.tracer.Start(ctx, "poll.batch", trace.WithAttributes(attribute.Int("batch.size", len(first))))
	defer span.End()

	seen := make(map[string]struct{}, len(first))
	for _, item := range first {
		if _, ok := seen[item.Key]; ok {
			return nil, &CorrelationError{Key: item.Key, JobID: item.Job.ID, Detail: "duplicate correlation key"}
		}
		seen[item.Key] = struct{}{}
	}

	start := time.Now()
	done := make(map[string]job.Raw, len(first))
	batch := first

	for round := 1; ; round++ {
		pending := newPendingSet(len(batch))
		for _, item := range batch {
			if item.Job.Completed {
				done[item.Key] = item.Job
				p.metrics.terminal(item.Job)
				continue
			}

			if err := pending.add(item); err != nil {
				return nil, err
			}
		}

		span.AddEvent("round", trace.WithAttributes(
			attribute.Int("round", round),
			attribute.Int("completed", len(done)),
			attribute.Int("pending", pending.len()),
		))
		p.logger.Debug("batch round", "round", round, "completed", len(done), "pending", pending.len())

		if pending.len() == 0 {
			break
		}

		if err := ctx.Err(); err != nil {
			return nil, p.abort(ctx, fmt.Errorf("poll context ended: %w", err))
		}

		p.metrics.round("batch")

		statuses, err := query(ctx, pending.ids())
		if err != nil {
			return nil, p.abort(ctx, fmt.Errorf("querying batch of %d jobs: %w", pending.len(), err))
		}

		if batch, err = pending.correlate(statuses); err != nil {
			return nil, err
		}

		if err := p.pause(ctx); err != nil {
			return nil, err
		}
	}

	p.metrics.observe("batch", start)
	p.logger.Info("batch terminal", "jobs", len(done), "since", time.Since(start).String())

	return done, nil
}

// pendingSet maps the ids of non-terminal jobs to their caller keys for
// one round. It never outlives the WaitBatch call that built it.
type pendingSet struct {
	keys  map[job.ID]string
	order []job.ID
}

func newPendingSet(size int) *pendingSet {
	return &pendingSet{
		keys:  make(map[job.ID]string, size),
		order: make([]job.ID, 0, size),
	}
}

func (ps *pendingSet) add(item job.Keyed) error {
	if other, ok := ps.keys[item.Job.ID]; ok {
		return &CorrelationError{Key: item.Key, JobID: item.Job.ID, Detail: fmt.Sprintf("job id already pending for key[%s]", other)}
	}

	ps.keys[item.Job.ID] = item.Key
	ps.order = append(ps.order, item.Job.ID)

	return nil
}

func (ps *pendingSet) len() int {
	return len(ps.order)
}

// ids lists pending job ids in the order they were added.
func (ps *pendingSet) ids() []job.ID {
	ids := make([]job.ID, len(ps.order))
	copy(ids, ps.order)
	return ids
}

// correlate pairs every returned status with its caller key.
func (ps *pendingSet) correlate(statuses []job.Raw) ([]job.Keyed, error) {
	next := make([]job.Keyed, 0, len(statuses))
	matched := make(map[job.ID]struct{}, len(statuses))

	for _, status := range statuses {
		key, ok := ps.keys[status.ID]
		if !ok {
			return nil, &CorrelationError{JobID: status.ID, Detail: "status returned for a job that is not pending"}
		}

		if _, dup := matched[status.ID]; dup {
			return nil, &CorrelationError{Key: key, JobID: status.ID, Detail: "status returned twice in one round"}
		}

		matched[status.ID] = struct{}{}
		next = append(next, job.Keyed{Key: key, Job: status})
	}

	for _, id := range ps.order {
		if _, ok := matched[id]; !ok {
			return nil, &CorrelationError{Key: ps.keys[id], JobID: id, Detail: "pending job missing from batch status response"}
		}
	}

	return next, nil
}
