package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fivetwenty-io/csapi/internal/catalog"
	"github.com/fivetwenty-io/csapi/internal/clock"
	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/internal/events"
	"github.com/fivetwenty-io/csapi/internal/http"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// JobsClient implements csapi.JobsClient.
type JobsClient struct {
	httpClient *http.Client
	operation  *catalog.Operation
	clock      clock.Clock
	policy     csapi.PollPolicy
	publisher  events.Publisher
	logger     csapi.Logger
}

// NewJobsClient creates a new jobs client.
func NewJobsClient(httpClient *http.Client, opts ...Option) *JobsClient {
	return newJobsClient(httpClient, newSettings(opts))
}

func newJobsClient(httpClient *http.Client, s *settings) *JobsClient {
	publisher := s.publisher
	if publisher == nil {
		publisher = events.Nop{}
	}

	cat := s.catalog
	if cat == nil {
		cat = catalog.Default()
	}

	operation, err := cat.Lookup(constants.CommandQueryAsyncJobResult)
	if err != nil {
		query := catalog.AdHoc(constants.CommandQueryAsyncJobResult, false)
		operation = &query
	}

	return &JobsClient{
		httpClient: httpClient,
		operation:  operation,
		clock:      s.clock,
		policy:     s.policy,
		publisher:  publisher,
		logger:     s.logger,
	}
}

// Get implements csapi.JobsClient.Get.
func (c *JobsClient) Get(ctx context.Context, jobID string) (*csapi.AsyncJob, error) {
	params, err := c.operation.Build(map[string]string{constants.ParamJobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	resp, err := c.httpClient.Call(ctx, c.operation.Command, params)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	envelope, err := resp.Envelope(c.operation.Envelope())
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	var job csapi.AsyncJob

	err = json.Unmarshal(envelope, &job)
	if err != nil {
		return nil, fmt.Errorf("parsing job: %w", err)
	}

	err = checkJobStatus(envelope, resp.Body, job.Status)
	if err != nil {
		return nil, fmt.Errorf("getting job %s: %w", jobID, err)
	}

	if job.JobID == "" {
		job.JobID = jobID
	}

	job.Raw = resp.Body

	return &job, nil
}

// checkJobStatus rejects status replies without a known jobstatus. An
// error envelope in their place is returned with the invalid response.
func checkJobStatus(envelope json.RawMessage, body []byte, status csapi.JobStatus) error {
	var fields map[string]json.RawMessage

	err := json.Unmarshal(envelope, &fields)
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrInvalidResponse, err)
	}

	if _, ok := fields[constants.FieldJobStatus]; !ok {
		apiErr, parseErr := csapi.ParseAPIError(body)
		if parseErr == nil {
			return fmt.Errorf("%w: %w", constants.ErrInvalidResponse, apiErr)
		}

		return fmt.Errorf("%w: missing %s", constants.ErrInvalidResponse, constants.FieldJobStatus)
	}

	if !status.Valid() {
		return fmt.Errorf("%w: unknown %s %d", constants.ErrInvalidResponse, constants.FieldJobStatus, int(status))
	}

	return nil
}

// PollUntilComplete implements csapi.JobsClient.PollUntilComplete.
func (c *JobsClient) PollUntilComplete(ctx context.Context, jobID string) (*csapi.AsyncJob, error) {
	return c.PollWithTimeout(ctx, jobID, c.policy.Timeout)
}

// PollWithTimeout implements csapi.JobsClient.PollWithTimeout.
//
// The job is queried once per iteration. A pending job is abandoned with a
// *csapi.PollTimeoutError once timeout has elapsed since the first query,
// never earlier. A failed job yields a *csapi.AsyncJobFailure together with
// the last observed job.
func (c *JobsClient) PollWithTimeout(ctx context.Context, jobID string, timeout time.Duration) (*csapi.AsyncJob, error) {
	start := c.clock.Now()
	queries := 0

	for {
		job, err := c.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}

		queries++

		c.debug("Job status", map[string]interface{}{
			"job_id":  jobID,
			"status":  job.Status.String(),
			"queries": queries,
		})

		switch job.Status {
		case csapi.JobStatusSuccess:
			c.publish(ctx, job, events.OutcomeSuccess, queries, c.clock.Now().Sub(start), nil)

			return job, nil
		case csapi.JobStatusFailed:
			failure := &csapi.AsyncJobFailure{
				JobID:      jobID,
				ResultCode: job.ResultCode,
				ErrorText:  job.ErrorText(),
				Raw:        job.Raw,
			}
			c.publish(ctx, job, events.OutcomeFailed, queries, c.clock.Now().Sub(start), failure)

			return job, failure
		}

		err = c.clock.Sleep(ctx, c.policy.Interval)
		if err != nil {
			return nil, fmt.Errorf("polling job %s: %w", jobID, err)
		}

		elapsed := c.clock.Now().Sub(start)
		if elapsed >= timeout {
			timeoutErr := &csapi.PollTimeoutError{JobID: jobID, Timeout: timeout, Elapsed: elapsed}
			c.publish(ctx, job, events.OutcomeTimeout, queries, elapsed, timeoutErr)

			return nil, timeoutErr
		}
	}
}

// publish reports the outcome of a poll session. Publishing failures are
// logged and otherwise ignored.
func (c *JobsClient) publish(ctx context.Context, job *csapi.AsyncJob, outcome string, queries int, elapsed time.Duration, cause error) {
	event := &events.JobEvent{
		JobID:      job.JobID,
		Outcome:    outcome,
		ResultCode: job.ResultCode,
		Command:    job.Command,
		Queries:    queries,
		Elapsed:    elapsed.String(),
		Timestamp:  c.clock.Now().UTC(),
	}

	if cause != nil {
		event.Error = cause.Error()
	}

	err := c.publisher.PublishJob(ctx, event)
	if err != nil && c.logger != nil {
		c.logger.Warn("Publishing job event failed", map[string]interface{}{
			"job_id": job.JobID,
			"error":  err.Error(),
		})
	}
}

func (c *JobsClient) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}
