package appchains

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adamwoolhether/appchains/internal/validate"
	"github.com/adamwoolhether/appchains/job"
	"github.com/adamwoolhether/appchains/poll"
	"github.com/adamwoolhether/appchains/report"
)

// GetReport runs appCode on dataSourceID through endpoint (usually
// [EndpointStartApp]) and blocks until the report is ready.
func (c *Client) GetReport(ctx context.Context, endpoint, appCode, dataSourceID string) (report.Report, error) {
	body := NewChainRequest(appCode, dataSourceID)
	if err := validate.Struct(body); err != nil {
		return report.Report{}, fmt.Errorf("invalid chain request: %w", err)
	}

	return c.GetReportEx(ctx, endpoint, body)
}

// GetReportEx is GetReport with a caller-built request body. A []byte,
// json.RawMessage or string body is sent as-is.
func (c *Client) GetReportEx(ctx context.Context, endpoint string, body any) (report.Report, error) {
	raw, err := c.runJob(ctx, endpoint, body)
	if err != nil {
		return report.Report{}, err
	}

	return c.assembler.Assemble(raw), nil
}

// GetRawReport is GetReport returning the terminal status object exactly
// as the server sent it.
func (c *Client) GetRawReport(ctx context.Context, endpoint, appCode, dataSourceID string) (json.RawMessage, error) {
	body := NewChainRequest(appCode, dataSourceID)
	if err := validate.Struct(body); err != nil {
		return nil, fmt.Errorf("invalid chain request: %w", err)
	}

	return c.GetRawReportEx(ctx, endpoint, body)
}

// GetRawReportEx is GetRawReport with a caller-built request body.
func (c *Client) GetRawReportEx(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	raw, err := c.runJob(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}

	return raw.Source, nil
}

// GetReportBatch submits chains together through endpoint (usually
// [EndpointStartAppBatch]) and blocks until every job is terminal.
// Reports are keyed by app code. Either every chain gets a report or the
// call fails; a chain named twice fails with [ErrDuplicateKey] before any
// request is sent.
func (c *Client) GetReportBatch(ctx context.Context, endpoint string, chains []Chain) (map[string]report.Report, error) {
	done, err := c.runBatch(ctx, endpoint, chains)
	if err != nil {
		return nil, err
	}

	reports := make(map[string]report.Report, len(done))
	for key, raw := range done {
		reports[key] = c.assembler.Assemble(raw)
	}

	return reports, nil
}

// GetReportBatchMap is GetReportBatch for an app code to data source mapping.
func (c *Client) GetReportBatchMap(ctx context.Context, endpoint string, chains map[string]string) (map[string]report.Report, error) {
	return c.GetReportBatch(ctx, endpoint, ChainsFromMap(chains))
}

// GetRawReportBatch is GetReportBatch returning each terminal status
// object exactly as the server sent it.
func (c *Client) GetRawReportBatch(ctx context.Context, endpoint string, chains []Chain) (map[string]json.RawMessage, error) {
	done, err := c.runBatch(ctx, endpoint, chains)
	if err != nil {
		return nil, err
	}

	raws := make(map[string]json.RawMessage, len(done))
	for key, raw := range done {
		raws[key] = raw.Source
	}

	return raws, nil
}

func (c *Client) runJob(ctx context.Context, endpoint string, body any) (job.Raw, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.submit(ctx, endpoint, body)
	if err != nil {
		return job.Raw{}, err
	}

	first, err := job.Decode(resp.Body)
	if err != nil {
		return job.Raw{}, fmt.Errorf("decoding submission response: %w", err)
	}

	c.logger.Info("job submitted", "endpoint", endpoint, "job", first.ID, "status", first.Status)

	return c.poller.Wait(ctx, first, c.queryJob)
}

func (c *Client) runBatch(ctx context.Context, endpoint string, chains []Chain) (map[string]job.Raw, error) {
	if err := checkChains(chains); err != nil {
		return nil, err
	}

	if len(chains) == 0 {
		return map[string]job.Raw{}, nil
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.submit(ctx, endpoint, NewBatchRequest(chains))
	if err != nil {
		return nil, err
	}

	items, err := job.DecodeKeyed(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding batch submission response: %w", err)
	}

	first, err := correlateSubmission(chains, items)
	if err != nil {
		return nil, err
	}

	c.logger.Info("batch submitted", "endpoint", endpoint, "jobs", len(first))

	return c.poller.WaitBatch(ctx, first, c.queryBatch)
}

// correlateSubmission checks the submission response names exactly the
// submitted chains. Items without a key are matched by position.
func correlateSubmission(chains []Chain, items []job.Keyed) ([]job.Keyed, error) {
	submitted := make(map[string]struct{}, len(chains))
	for _, ch := range chains {
		submitted[ch.AppCode] = struct{}{}
	}

	first := make([]job.Keyed, 0, len(items))
	answered := make(map[string]struct{}, len(items))

	for i, item := range items {
		if item.Key == "" {
			if i >= len(chains) {
				return nil, &poll.CorrelationError{JobID: item.Job.ID, Detail: fmt.Sprintf("unkeyed submission item[%d] beyond %d submitted chains", i, len(chains))}
			}
			item.Key = chains[i].AppCode
		}

		if _, ok := submitted[item.Key]; !ok {
			return nil, &poll.CorrelationError{Key: item.Key, JobID: item.Job.ID, Detail: "submission response names a chain that was not submitted"}
		}

		if _, dup := answered[item.Key]; dup {
			return nil, &poll.CorrelationError{Key: item.Key, JobID: item.Job.ID, Detail: "submission response names a chain twice"}
		}

		answered[item.Key] = struct{}{}
		first = append(first, item)
	}

	for _, ch := range chains {
		if _, ok := answered[ch.AppCode]; !ok {
			return nil, &poll.CorrelationError{Key: ch.AppCode, Detail: "chain missing from submission response"}
		}
	}

	return first, nil
}
