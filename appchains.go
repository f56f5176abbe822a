package appchains

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"

	"github.com/adamwoolhether/appchains/client"
	"github.com/adamwoolhether/appchains/client/download"
	"github.com/adamwoolhether/appchains/job"
	"github.com/adamwoolhether/appchains/poll"
	"github.com/adamwoolhether/appchains/report"
)

// ProtocolVersion prefixes versioned endpoint paths.
const ProtocolVersion = "v2"

// Client talks to one AppChains deployment. It is safe for concurrent use;
// concurrent calls share only the immutable Config and the HTTP transport.
type Client struct {
	cfg       Config
	http      *client.Client
	poller    *poll.Poller
	assembler report.Assembler
	logger    *slog.Logger
}

// New validates cfg and builds a Client.
func New(cfg Config, optFns ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying appchains option: %w", err)
		}
	}

	logger := slog.Default()
	if opts.logger != nil {
		logger = opts.logger
	}

	httpOpts := []client.Option{
		client.WithLogger(logger),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithBearerToken(cfg.Token),
	}
	if cfg.UserAgent != "" {
		httpOpts = append(httpOpts, client.WithUserAgent(cfg.UserAgent))
	}
	if cfg.RateLimit > 0 {
		httpOpts = append(httpOpts, client.WithThrottle(cfg.RateLimit, cfg.burst()))
	}
	if opts.tracerProvider != nil {
		httpOpts = append(httpOpts, client.WithTracerProvider(opts.tracerProvider))
	}

	hc, err := client.Build(append(httpOpts, opts.httpOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("building http client: %w", err)
	}

	pollOpts := []poll.Option{
		poll.WithInterval(cfg.PollInterval),
		poll.WithLogger(logger),
	}
	if opts.registerer != nil {
		m, err := poll.NewMetrics(opts.registerer)
		if err != nil {
			return nil, err
		}
		pollOpts = append(pollOpts, poll.WithMetrics(m))
	}
	if opts.tracerProvider != nil {
		pollOpts = append(pollOpts, poll.WithTracer(opts.tracerProvider.Tracer("github.com/adamwoolhether/appchains/poll")))
	}

	poller, err := poll.New(append(pollOpts, opts.pollOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("building poller: %w", err)
	}

	c := &Client{
		cfg:    cfg,
		http:   hc,
		poller: poller,
		logger: logger,
	}

	if opts.fileResults {
		c.assembler = report.Assembler{FileURL: c.reportFileURL, Saver: c}
	}

	return c, nil
}

// Config returns the configuration the Client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// Save downloads the file at u to destPath. It lets [report.File] values
// reuse the Client's authenticated transport.
func (c *Client) Save(ctx context.Context, u *url.URL, destPath string, opts ...download.Option) error {
	req, err := client.Request(ctx, u, http.MethodGet)
	if err != nil {
		return err
	}

	return c.http.Download(req, http.StatusOK, destPath, opts...)
}

// bound applies Config.Timeout to ctx.
func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, c.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// submit posts body to a versioned endpoint. Anything but 200 is a SubmissionError.
func (c *Client) submit(ctx context.Context, endpoint string, body any) (*client.Response, error) {
	req, err := client.Request(ctx, c.versionedURL(endpoint, nil), http.MethodPost, payload(body))
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Exchange(req)
	if err != nil {
		return nil, fmt.Errorf("submitting to %s: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &SubmissionError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
			Err:        ErrSubmission,
		}
	}

	return resp, nil
}

// queryJob fetches the status of one job.
func (c *Client) queryJob(ctx context.Context, id job.ID) (job.Raw, error) {
	u := c.baseURL("/GetAppResults", map[string]string{"idJob": id.String()})

	req, err := client.Request(ctx, u, http.MethodGet)
	if err != nil {
		return job.Raw{}, err
	}

	resp, err := c.http.Exchange(req)
	if err != nil {
		return job.Raw{}, err
	}

	if err := resp.Expect(http.StatusOK); err != nil {
		return job.Raw{}, err
	}

	return job.Decode(resp.Body)
}

// queryBatch fetches the status of several jobs in one request.
func (c *Client) queryBatch(ctx context.Context, ids []job.ID) ([]job.Raw, error) {
	u := c.versionedURL("GetAppResultsBatch", nil)

	req, err := client.Request(ctx, u, http.MethodPost, client.WithPayload(batchStatusRequest{JobIds: ids}))
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Exchange(req)
	if err != nil {
		return nil, err
	}

	if err := resp.Expect(http.StatusOK); err != nil {
		return nil, err
	}

	return job.DecodeList(resp.Body)
}

func (c *Client) reportFileURL(fileID string) *url.URL {
	return c.versionedURL("GetReportFile", map[string]string{"idJob": fileID})
}

func (c *Client) versionedURL(endpoint string, query map[string]string) *url.URL {
	return c.baseURL(path.Join("/", ProtocolVersion, endpoint), query)
}

func (c *Client) baseURL(p string, query map[string]string) *url.URL {
	return client.URL(c.cfg.Scheme, c.cfg.Host, p, client.WithPort(c.cfg.Port), client.WithQueryStrings(query))
}

// payload sends pre-encoded bodies unchanged and JSON-encodes everything else.
func payload(body any) client.RequestOption {
	switch b := body.(type) {
	case []byte:
		return client.WithRawPayload(b)
	case json.RawMessage:
		return client.WithRawPayload(b)
	case string:
		return client.WithRawPayload([]byte(b))
	default:
		return client.WithPayload(body)
	}
}
