package appchainstest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"time"
)

// handler is a http.Handler that returns an error.
type handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// middleware chains handlers together.
type middleware func(handler) handler

type ctxKey int

const valuesKey ctxKey = 1

// values are shared by the middleware of one request.
type values struct {
	now        time.Time
	statusCode int
}

func getValues(ctx context.Context) *values {
	v, ok := ctx.Value(valuesKey).(*values)
	if !ok {
		return &values{now: time.Now()}
	}
	return v
}

// statusError is returned by handlers to answer with code.
type statusError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *statusError) Error() string {
	return e.Message
}

func newStatusError(code int, format string, args ...any) *statusError {
	return &statusError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// route registers fn for pattern, wrapped in mw in the order given.
func route(mux *http.ServeMux, logger *slog.Logger, pattern string, fn handler, mw ...middleware) {
	fn = wrap(mw, fn)

	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), valuesKey, &values{now: time.Now().UTC()})

		if err := fn(ctx, w, r.WithContext(ctx)); err != nil {
			logger.Error("handling request", "pattern", pattern, "error", err)
		}
	})
}

func wrap(mw []middleware, fn handler) handler {
	for _, mwFn := range slices.Backward(mw) {
		if mwFn != nil {
			fn = mwFn(fn)
		}
	}
	return fn
}

// logRequests logs the start and end of every request.
func logRequests(log *slog.Logger) middleware {
	return func(next handler) handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v := getValues(ctx)

			path := r.URL.Path
			if r.URL.RawQuery != "" {
				path = fmt.Sprintf("%s?%s", path, r.URL.RawQuery)
			}

			log.Debug("request started", "method", r.Method, "path", path)

			err := next(ctx, w, r)

			log.Debug("request completed", "method", r.Method, "path", path, "statusCode", v.statusCode, "since", time.Since(v.now).String())

			return err
		}
	}
}

// respondErrors turns handler errors into JSON error responses.
func respondErrors(log *slog.Logger) middleware {
	return func(next handler) handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := next(ctx, w, r)
			if err == nil {
				return nil
			}

			var se *statusError
			if !errors.As(err, &se) {
				log.Error("handler failed", "path", r.URL.Path, "error", err)
				se = &statusError{Code: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError)}
			}

			return respondJSON(ctx, w, se.Code, se)
		}
	}
}

// recoverPanics converts a panicking handler into an error.
func recoverPanics() middleware {
	return func(next handler) handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(debug.Stack()))
				}
			}()

			return next(ctx, w, r)
		}
	}
}

// requireBearer rejects requests without the expected token.
// An empty token accepts every request.
func requireBearer(token string) middleware {
	return func(next handler) handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				return newStatusError(http.StatusUnauthorized, "invalid or missing bearer token")
			}
			return next(ctx, w, r)
		}
	}
}

// respondJSON writes data with statusCode.
func respondJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) error {
	getValues(ctx).statusCode = statusCode

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		return err
	}

	return nil
}

func decodeJSON(r *http.Request, dst any) error {
	d := json.NewDecoder(r.Body)
	d.UseNumber()

	if err := d.Decode(dst); err != nil {
		return newStatusError(http.StatusBadRequest, "decoding request body: %v", err)
	}
	return nil
}
