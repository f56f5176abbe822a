package poll

import (
	"errors"
	"fmt"

	"github.com/adamwoolhether/appchains/job"
)

var (
	// ErrCorrelation is the sentinel error wrapped by [CorrelationError].
	ErrCorrelation = errors.New("batch correlation failed")
	// ErrPollTimeout is joined with the context error when a deadline
	// expires while a job is still pending.
	ErrPollTimeout = errors.New("poll timeout")
)

// CorrelationError is returned when a status cannot be routed back to
// exactly one caller key. The whole batch fails; no partial map is returned.
type CorrelationError struct {
	Key    string
	JobID  job.ID
	Detail string
}

func (e *CorrelationError) Error() string {
	return fmt.Sprintf("%v: %s: key[%s] job[%s]", ErrCorrelation, e.Detail, e.Key, e.JobID)
}

func (e *CorrelationError) Unwrap() error {
	return ErrCorrelation
}
