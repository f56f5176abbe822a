package appchains

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmission is the sentinel error wrapped by [SubmissionError].
	ErrSubmission = errors.New("job submission rejected")
	// ErrDuplicateKey is returned when one batch names the same chain twice.
	// No request is sent.
	ErrDuplicateKey = errors.New("duplicate chain in batch")
)

// SubmissionError is returned when the submission endpoint answers with
// anything but 200. It is never retried.
type SubmissionError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%v: %s returned %d, body: %s", e.Err, e.Endpoint, e.StatusCode, e.Body)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
