// Package throttle provides an [http.RoundTripper] that rate-limits
// outbound HTTP requests using a token-bucket algorithm from
// [golang.org/x/time/rate].
//
// Polling a large batch at a short interval can burst more status queries
// than the service accepts; wrapping the transport keeps the client under
// the agreed rate:
//
//	rt, err := throttle.NewRoundTripper(
//		5, // requests per second
//		5, // burst capacity
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// When the bucket is empty, outbound requests block until a token becomes
// available or the request context is cancelled.
package throttle
