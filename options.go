package appchains

import (
	"errors"
	"log/slog"

	"github.com/adamwoolhether/appchains/client"
	"github.com/adamwoolhether/appchains/poll"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Option is a functional option for configuring a [Client] via [New].
type Option func(*options) error

type options struct {
	httpOpts       []client.Option
	pollOpts       []poll.Option
	logger         *slog.Logger
	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
	fileResults    bool
}

// WithHTTPOptions passes extra options to the underlying [client.Build].
// They are applied after the ones derived from [Config].
func WithHTTPOptions(opts ...client.Option) Option {
	return func(o *options) error {
		o.httpOpts = append(o.httpOpts, opts...)
		return nil
	}
}

// WithPollOptions passes extra options to [poll.New], e.g. [poll.WithSleep].
func WithPollOptions(opts ...poll.Option) Option {
	return func(o *options) error {
		o.pollOpts = append(o.pollOpts, opts...)
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] used by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithMetrics registers poll metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return errors.New("registerer must not be nil")
		}
		o.registerer = reg
		return nil
	}
}

// WithTracerProvider traces HTTP exchanges and poll loops with tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) error {
		if tp == nil {
			return errors.New("tracer provider must not be nil")
		}
		o.tracerProvider = tp
		return nil
	}
}

// WithFileResults makes reports include pdf result properties as
// [report.File] values that can be saved locally.
func WithFileResults() Option {
	return func(o *options) error {
		o.fileResults = true
		return nil
	}
}
