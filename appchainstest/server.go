package appchainstest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/adamwoolhether/appchains"
	"github.com/adamwoolhether/appchains/internal/validate"
	"github.com/adamwoolhether/appchains/job"
)

// Result is the terminal outcome of every job run for one app code.
type Result struct {
	Succeeded bool
	// Cancelled ends the job as "Cancelled" instead of "Completed".
	Cancelled bool
	Props     []job.Prop
}

// Option is a functional option for configuring a [Server] via [NewServer].
type Option func(*options)

type options struct {
	logger  *slog.Logger
	token   string
	polls   int
	results map[string]Result
	beacons map[string]string
	files   map[string][]byte
	unkeyed bool
	strIDs  bool
}

// WithLogger injects a custom [slog.Logger].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithToken makes every API route require the bearer token.
// Beacon routes stay open.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithPollsUntilDone keeps each job running for n status queries.
// With n == 0 jobs are terminal in the submission response.
func WithPollsUntilDone(n int) Option {
	return func(o *options) {
		o.polls = max(n, 0)
	}
}

// WithResult registers the result for appCode. Submitting an app code
// without a result fails with 400.
func WithResult(appCode string, res Result) Option {
	return func(o *options) {
		o.results[appCode] = res
	}
}

// WithBeacon answers the beacon method with body.
func WithBeacon(method, body string) Option {
	return func(o *options) {
		o.beacons[method] = body
	}
}

// WithFile serves content as the report file fileID.
func WithFile(fileID string, content []byte) Option {
	return func(o *options) {
		o.files[fileID] = content
	}
}

// WithUnkeyedBatch leaves Key out of batch submission items, as older
// deployments do.
func WithUnkeyedBatch() Option {
	return func(o *options) {
		o.unkeyed = true
	}
}

// WithStringIDs issues zero-padded job ids as JSON strings instead of
// numbers. Batch status queries must echo them back as strings.
func WithStringIDs() Option {
	return func(o *options) {
		o.strIDs = true
	}
}

// Server is a fake AppChains deployment. It is safe for concurrent use.
type Server struct {
	*httptest.Server

	opts options

	mu     sync.Mutex
	jobs   map[string]*fakeJob
	nextID int64

	submissions   atomic.Int32
	statusQueries atomic.Int32
}

type fakeJob struct {
	id        job.ID
	appCode   string
	remaining int
}

// NewServer starts a Server. Call Close when done.
func NewServer(optFns ...Option) *Server {
	opts := options{
		logger:  slog.New(slog.DiscardHandler),
		results: make(map[string]Result),
		beacons: make(map[string]string),
		files:   make(map[string][]byte),
	}
	for _, opt := range optFns {
		opt(&opts)
	}

	s := &Server{
		opts:   opts,
		jobs:   make(map[string]*fakeJob),
		nextID: 1000,
	}

	mux := http.NewServeMux()
	api := []middleware{logRequests(opts.logger), respondErrors(opts.logger), recoverPanics(), requireBearer(opts.token)}
	open := []middleware{logRequests(opts.logger), respondErrors(opts.logger), recoverPanics()}

	route(mux, opts.logger, "POST /v2/"+appchains.EndpointStartApp, s.startApp, api...)
	route(mux, opts.logger, "POST /v2/"+appchains.EndpointStartAppBatch, s.startAppBatch, api...)
	route(mux, opts.logger, "GET /GetAppResults", s.getAppResults, api...)
	route(mux, opts.logger, "POST /v2/GetAppResultsBatch", s.getAppResultsBatch, api...)
	route(mux, opts.logger, "GET /v2/GetReportFile", s.getReportFile, api...)
	for method := range opts.beacons {
		route(mux, opts.logger, "GET /"+method+"/", s.beacon(method), open...)
	}

	s.Server = httptest.NewServer(mux)

	return s
}

// Config returns a client configuration pointing at s.
func (s *Server) Config() appchains.Config {
	u, err := url.Parse(s.URL)
	if err != nil {
		panic("appchainstest: parsing server url: " + err.Error())
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		panic("appchainstest: parsing server port: " + err.Error())
	}

	cfg := appchains.DefaultConfig()
	cfg.Scheme = u.Scheme
	cfg.Host = u.Hostname()
	cfg.BeaconHost = u.Hostname()
	cfg.Port = port
	cfg.Token = s.opts.token

	return cfg
}

// Submissions counts accepted submissions, single and batch.
func (s *Server) Submissions() int {
	return int(s.submissions.Load())
}

// StatusQueries counts status queries, one per batch query.
func (s *Server) StatusQueries() int {
	return int(s.statusQueries.Load())
}

// /////////////////////////////////////////////////////////////////
// handlers

func (s *Server) startApp(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req appchains.ChainRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	if err := validate.Struct(req); err != nil {
		return newStatusError(http.StatusBadRequest, "%v", err)
	}

	fj, err := s.submit(req.AppCode)
	if err != nil {
		return err
	}
	s.submissions.Add(1)

	return respondJSON(ctx, w, http.StatusOK, s.status(fj))
}

func (s *Server) startAppBatch(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req appchains.BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	if err := validate.Struct(req); err != nil {
		return newStatusError(http.StatusBadRequest, "%v", err)
	}

	items := make([]keyedBody, 0, len(req.Pars))
	for _, par := range req.Pars {
		fj, err := s.submit(par.AppCode)
		if err != nil {
			return err
		}

		item := keyedBody{Value: s.status(fj)}
		if !s.opts.unkeyed {
			item.Key = par.AppCode
		}
		items = append(items, item)
	}
	s.submissions.Add(1)

	return respondJSON(ctx, w, http.StatusOK, items)
}

func (s *Server) getAppResults(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := r.URL.Query().Get("idJob")
	s.statusQueries.Add(1)

	fj, err := s.advance(id)
	if err != nil {
		return err
	}

	return respondJSON(ctx, w, http.StatusOK, s.status(fj))
}

func (s *Server) getAppResultsBatch(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req struct {
		JobIds []job.ID `json:"JobIds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	s.statusQueries.Add(1)

	statuses := make([]statusBody, 0, len(req.JobIds))
	for _, id := range req.JobIds {
		if id.IsNumber() == s.opts.strIDs {
			return newStatusError(http.StatusBadRequest, "job id %s sent in the wrong JSON form", id)
		}

		fj, err := s.advance(id.String())
		if err != nil {
			return err
		}
		statuses = append(statuses, s.status(fj))
	}

	return respondJSON(ctx, w, http.StatusOK, statuses)
}

func (s *Server) getReportFile(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := r.URL.Query().Get("idJob")

	content, ok := s.opts.files[id]
	if !ok {
		return newStatusError(http.StatusNotFound, "no report file %q", id)
	}

	getValues(ctx).statusCode = http.StatusOK
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	_, err := w.Write(content)

	return err
}

func (s *Server) beacon(method string) handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q := r.URL.Query()
		for _, param := range []string{"chrom", "pos", "allele"} {
			if q.Get(param) == "" {
				return newStatusError(http.StatusBadRequest, "missing %s", param)
			}
		}

		getValues(ctx).statusCode = http.StatusOK
		_, err := io.WriteString(w, s.opts.beacons[method])

		return err
	}
}

// /////////////////////////////////////////////////////////////////
// job bookkeeping

func (s *Server) submit(appCode string) (*fakeJob, error) {
	if _, ok := s.opts.results[appCode]; !ok {
		return nil, newStatusError(http.StatusBadRequest, "unknown app code %q", appCode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	fj := &fakeJob{
		id:        s.issueID(s.nextID),
		appCode:   appCode,
		remaining: s.opts.polls,
	}
	s.jobs[fj.id.String()] = fj

	cpy := *fj
	return &cpy, nil
}

// advance counts one status query against the job.
func (s *Server) advance(id string) (*fakeJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fj, ok := s.jobs[id]
	if !ok {
		return nil, newStatusError(http.StatusNotFound, "no job %q", id)
	}

	if fj.remaining > 0 {
		fj.remaining--
	}

	cpy := *fj
	return &cpy, nil
}

func (s *Server) issueID(n int64) job.ID {
	if s.opts.strIDs {
		return job.StringID(fmt.Sprintf("%06d", n))
	}
	return job.NumberID(json.Number(strconv.FormatInt(n, 10)))
}

// status renders a snapshot of the job.
func (s *Server) status(fj *fakeJob) statusBody {
	if fj.remaining > 0 {
		return statusBody{Status: statusHeader{IdJob: fj.id, Status: "Running"}}
	}

	res := s.opts.results[fj.appCode]
	state := "Completed"
	if res.Cancelled {
		state = "Cancelled"
	}

	return statusBody{
		Status:      statusHeader{IdJob: fj.id, Status: state, CompletedSuccesfully: res.Succeeded},
		ResultProps: res.Props,
	}
}

type statusBody struct {
	Status      statusHeader `json:"Status"`
	ResultProps []job.Prop   `json:"ResultProps"`
}

type statusHeader struct {
	IdJob                job.ID `json:"IdJob"`
	Status               string `json:"Status"`
	CompletedSuccesfully bool   `json:"CompletedSuccesfully"`
}

type keyedBody struct {
	Key   string     `json:"Key,omitempty"`
	Value statusBody `json:"Value"`
}
