// Package client provides the HTTP transport used to talk to the
// AppChains service, built on [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(30 * time.Second),
//		client.WithBearerToken(token),
//		client.WithThrottle(5, 5),
//	)
//
// Every request gets an X-Request-ID header. With [WithTracerProvider]
// each exchange is also recorded as a client span and the trace context
// is propagated to the server.
//
// # Making Requests
//
// Construct a [URL] and [Request], then execute with [Client.Exchange].
// The status code is returned as-is so callers decide what a failure is:
//
//	u := client.URL("https", "api.sequencing.com", "/v2/StartApp", client.WithPort(443))
//	req, err := client.Request(ctx, u, http.MethodPost, client.WithPayload(body))
//	resp, err := c.Exchange(req)
//	if err := resp.Expect(http.StatusOK); err != nil { ... }
//
// # Downloading Files
//
// Stream a response body directly to disk with optional checksum
// verification and progress reporting:
//
//	err = c.Download(req, http.StatusOK, "/tmp/report_42.pdf",
//		download.WithChecksum(sha256.New(), expectedHex),
//		download.WithProgress(),
//	)
package client
