package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/csapi/internal/catalog"
	"github.com/fivetwenty-io/csapi/internal/clock"
	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/internal/events"
	"github.com/fivetwenty-io/csapi/internal/http"
	"github.com/fivetwenty-io/csapi/internal/signer"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// Client implements the csapi.Client interface.
type Client struct {
	httpClient *http.Client
	catalog    *catalog.Catalog
	logger     csapi.Logger
	publisher  events.Publisher
	exec       *executor

	// Resource clients
	zones            *ZonesClient
	templates        *TemplatesClient
	serviceOfferings *ServiceOfferingsClient
	systemVMs        *SystemVMsClient
	virtualMachines  *VirtualMachinesClient
	jobs             *JobsClient
}

// settings collects what Options may override.
type settings struct {
	clock      clock.Clock
	policy     csapi.PollPolicy
	publisher  events.Publisher
	logger     csapi.Logger
	duplicates csapi.DuplicatePolicy
	catalog    *catalog.Catalog
	httpOpts   []http.Option
}

// Option configures a Client or a JobsClient.
type Option func(*settings)

// WithClock replaces the wall clock used by the poller.
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		s.clock = c
	}
}

// WithPollPolicy sets the poll interval and timeout. Zero fields keep the
// defaults.
func WithPollPolicy(policy csapi.PollPolicy) Option {
	return func(s *settings) {
		if policy.Interval > 0 {
			s.policy.Interval = policy.Interval
		}

		if policy.Timeout > 0 {
			s.policy.Timeout = policy.Timeout
		}
	}
}

// WithPublisher sets the receiver of terminal job outcomes.
func WithPublisher(publisher events.Publisher) Option {
	return func(s *settings) {
		s.publisher = publisher
	}
}

// WithLogger sets the logger.
func WithLogger(logger csapi.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithDuplicatePolicy sets how name resolution treats duplicate names.
func WithDuplicatePolicy(policy csapi.DuplicatePolicy) Option {
	return func(s *settings) {
		s.duplicates = policy
	}
}

// WithCatalog replaces the operation catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *settings) {
		s.catalog = c
	}
}

// WithHTTPOptions passes options to the transport created by New.
func WithHTTPOptions(opts ...http.Option) Option {
	return func(s *settings) {
		s.httpOpts = append(s.httpOpts, opts...)
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{
		clock: clock.Real(),
		policy: csapi.PollPolicy{
			Interval: constants.DefaultPollInterval,
			Timeout:  constants.DefaultJobPollTimeout,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *csapi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	return httpOpts
}

// New creates a client from config. The endpoint is used as given.
func New(config *csapi.Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, constants.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, constants.ErrAPIEndpointRequired
	}

	if config.APIKey == "" {
		return nil, constants.ErrAPIKeyRequired
	}

	if config.SecretKey == "" {
		return nil, constants.ErrSecretKeyRequired
	}

	base := []Option{
		WithLogger(config.Logger),
		WithPollPolicy(config.Poll),
		WithDuplicatePolicy(config.DuplicatePolicy),
	}

	s := newSettings(append(base, opts...))

	if s.catalog == nil {
		cat, err := loadCatalog(config.CatalogFile)
		if err != nil {
			return nil, err
		}

		s.catalog = cat
	}

	if s.publisher == nil && config.NATSURL != "" {
		publisher, err := events.NewNATSPublisher(config.NATSURL, config.NATSSubject)
		if err != nil {
			return nil, err
		}

		s.publisher = publisher
	}

	httpOpts := append(createHTTPClientOptions(config), s.httpOpts...)
	httpClient := http.NewClient(config.APIEndpoint, config.APIKey, signer.New(config.SecretKey), httpOpts...)

	return newClient(httpClient, s), nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}

	cat, err := catalog.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	return cat, nil
}

func newClient(httpClient *http.Client, s *settings) *Client {
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}

	if s.publisher == nil {
		s.publisher = events.Nop{}
	}

	client := &Client{
		httpClient: httpClient,
		catalog:    s.catalog,
		logger:     s.logger,
		publisher:  s.publisher,
	}

	client.initializeResourceClients(s)

	return client
}

func (c *Client) initializeResourceClients(s *settings) {
	c.jobs = newJobsClient(c.httpClient, s)
	c.exec = &executor{httpClient: c.httpClient, catalog: c.catalog, jobs: c.jobs, logger: s.logger}
	c.zones = &ZonesClient{exec: c.exec}
	c.templates = &TemplatesClient{exec: c.exec}
	c.serviceOfferings = &ServiceOfferingsClient{exec: c.exec}
	c.systemVMs = &SystemVMsClient{exec: c.exec}
	c.virtualMachines = &VirtualMachinesClient{
		exec:             c.exec,
		zones:            c.zones,
		templates:        c.templates,
		serviceOfferings: c.serviceOfferings,
		resolver:         NewResolver(s.duplicates),
		logger:           s.logger,
	}
}

// Catalog returns the operation catalog.
func (c *Client) Catalog() *catalog.Catalog {
	return c.catalog
}

// Close releases the job event publisher.
func (c *Client) Close() {
	c.publisher.Close()
}

// Zones implements csapi.Client.Zones.
func (c *Client) Zones() csapi.ZonesClient {
	return c.zones
}

// Templates implements csapi.Client.Templates.
func (c *Client) Templates() csapi.TemplatesClient {
	return c.templates
}

// ServiceOfferings implements csapi.Client.ServiceOfferings.
func (c *Client) ServiceOfferings() csapi.ServiceOfferingsClient {
	return c.serviceOfferings
}

// SystemVMs implements csapi.Client.SystemVMs.
func (c *Client) SystemVMs() csapi.SystemVMsClient {
	return c.systemVMs
}

// VirtualMachines implements csapi.Client.VirtualMachines.
func (c *Client) VirtualMachines() csapi.VirtualMachinesClient {
	return c.virtualMachines
}

// Jobs implements csapi.Client.Jobs.
func (c *Client) Jobs() csapi.JobsClient {
	return c.jobs
}

// Execute implements csapi.Client.Execute.
func (c *Client) Execute(ctx context.Context, operation string, params csapi.Params) (*csapi.Result, error) {
	op, err := c.catalog.Lookup(operation)
	if err != nil {
		return nil, csapi.Fail(operation, err)
	}

	return c.Run(ctx, op, params)
}

// Run executes op, which need not be part of the catalog.
func (c *Client) Run(ctx context.Context, op *catalog.Operation, params csapi.Params) (*csapi.Result, error) {
	result, err := c.exec.run(ctx, op, params)
	if err != nil {
		return nil, csapi.Fail(op.Name, err)
	}

	return result, nil
}

// executor runs catalog operations over the transport.
type executor struct {
	httpClient *http.Client
	catalog    *catalog.Catalog
	jobs       *JobsClient
	logger     csapi.Logger
}

// call sends op and returns its response envelope.
func (e *executor) call(ctx context.Context, op *catalog.Operation, params map[string]string) (json.RawMessage, error) {
	merged, err := op.Build(params)
	if err != nil {
		return nil, err
	}

	resp, err := e.httpClient.Call(ctx, op.Command, merged)
	if err != nil {
		return nil, err
	}

	return resp.Envelope(op.Envelope())
}

// submit sends an asynchronous op and polls its job to completion.
func (e *executor) submit(ctx context.Context, op *catalog.Operation, params map[string]string) (*csapi.AsyncJob, error) {
	envelope, err := e.call(ctx, op, params)
	if err != nil {
		return nil, err
	}

	jobID, err := jobIDOf(envelope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Command, err)
	}

	return e.jobs.PollUntilComplete(ctx, jobID)
}

func (e *executor) run(ctx context.Context, op *catalog.Operation, params csapi.Params) (*csapi.Result, error) {
	result := &csapi.Result{Operation: op.Name, Command: op.Command}

	if !op.Async {
		envelope, err := e.call(ctx, op, params)
		if err != nil {
			return nil, err
		}

		result.Body = envelope

		return result, nil
	}

	job, err := e.submit(ctx, op, params)
	if err != nil {
		return nil, err
	}

	result.Job = job
	result.Body = job.Result

	if op.ResultKey != "" {
		inner, err := field(job.Result, op.ResultKey)
		if err != nil {
			e.debug("Job result kept whole", map[string]interface{}{
				"operation":  op.Name,
				"job_id":     job.JobID,
				"result_key": op.ResultKey,
				"error":      err.Error(),
			})
		} else {
			result.Body = inner
		}
	}

	return result, nil
}

func (e *executor) debug(msg string, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, fields)
	}
}

// lookup returns a catalog operation the client depends on.
func (e *executor) lookup(name string) (*catalog.Operation, error) {
	return e.catalog.Lookup(name)
}

func jobIDOf(envelope json.RawMessage) (string, error) {
	var body struct {
		JobID string `json:"jobid"`
	}

	err := json.Unmarshal(envelope, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", constants.ErrInvalidResponse, err)
	}

	if body.JobID == "" {
		return "", constants.ErrMissingJobID
	}

	return body.JobID, nil
}

// field returns the value stored under key in a JSON object.
func field(object json.RawMessage, key string) (json.RawMessage, error) {
	var fields map[string]json.RawMessage

	err := json.Unmarshal(object, &fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidResponse, err)
	}

	value, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrMissingResult, key)
	}

	return value, nil
}
