package client

import (
	"errors"
	"fmt"
	"net/http"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code.
const maxErrBodySize = 4 << 10 // 4KB

// defaultMaxBodySize caps the body buffered by [Client.Exchange].
const defaultMaxBodySize = 32 << 20 // 32MB

// execFn represents a func to operate on a response.
type execFn func(response *http.Response) error

var (
	// ErrTransport wraps network-level failures: dialing, TLS, timeouts
	// and broken reads. It is never retried.
	ErrTransport = errors.New("transport failure")
	// ErrBodyTooLarge is returned when a response exceeds the configured
	// maximum body size.
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
)

// UnexpectedStatusError is returned when the HTTP response status code
// does not match the expected value.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// Response is the buffered outcome of one HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Expect returns an [UnexpectedStatusError] unless the response carries code.
func (r *Response) Expect(code int) error {
	if r.StatusCode == code {
		return nil
	}

	body := r.Body
	if len(body) > maxErrBodySize {
		body = body[:maxErrBodySize]
	}

	return &UnexpectedStatusError{
		StatusCode: r.StatusCode,
		Body:       string(body),
		Err:        ErrUnexpectedStatusCode,
	}
}
