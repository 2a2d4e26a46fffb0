// Package http sends signed API calls.
//
// Every call is exactly one form-encoded POST to the configured endpoint.
// Parameters never travel in the query string, which keeps large
// deployments clear of request-line length limits. Calls are not retried.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/internal/signer"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// Client executes signed calls against a single API endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	signer     *signer.Signer
	httpClient *retryablehttp.Client
	logger     csapi.Logger
	debug      bool
	userAgent  string
	chain      *csapi.InterceptorChain
	requestID  func() string
}

// Response is the raw outcome of a successful call.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
	RequestID  string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger csapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout bounds a single HTTP exchange.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *nethttp.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithRequestInterceptor appends a request interceptor.
func WithRequestInterceptor(interceptor csapi.RequestInterceptor) Option {
	return func(c *Client) {
		c.chain.AddRequestInterceptor(interceptor)
	}
}

// WithResponseInterceptor appends a response interceptor.
func WithResponseInterceptor(interceptor csapi.ResponseInterceptor) Option {
	return func(c *Client) {
		c.chain.AddResponseInterceptor(interceptor)
	}
}

// WithRequestIDFunc replaces the request id generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// NewClient creates a client for endpoint that signs with s on behalf of apiKey.
func NewClient(endpoint, apiKey string, s *signer.Signer, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.CheckRetry = neverRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		signer:     s,
		httpClient: retryClient,
		userAgent:  constants.DefaultUserAgent,
		chain:      csapi.NewInterceptorChain(),
		requestID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.debug && client.logger != nil {
		client.chain.AddRequestInterceptor(csapi.LoggingInterceptor(client.logger))
		client.chain.AddResponseInterceptor(csapi.LoggingResponseInterceptor(client.logger))
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client
}

// Endpoint returns the API endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call signs params for command and sends them. A non-2xx status or a
// network failure yields a *csapi.TransportError.
func (c *Client) Call(ctx context.Context, command string, params map[string]string) (*Response, error) {
	all := make(map[string]string, len(params)+3)
	for key, value := range params {
		all[key] = value
	}

	all[constants.ParamCommand] = command
	all[constants.ParamAPIKey] = c.apiKey
	all[constants.ParamResponse] = constants.ResponseFormatJSON

	form := signer.Form(c.signer.Sign(all))

	req := &csapi.Request{
		Command:   command,
		RequestID: c.requestID(),
		Headers:   nethttp.Header{},
		Form:      form,
	}
	req.Headers.Set(constants.HeaderContentType, constants.ContentTypeForm)
	req.Headers.Set(constants.HeaderUserAgent, c.userAgent)
	req.Headers.Set(constants.HeaderRequestID, req.RequestID)

	err := c.chain.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, &csapi.TransportError{Command: command, Err: err}
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &csapi.TransportError{Command: command, Err: fmt.Errorf("creating request: %w", err)}
	}

	httpReq.Header = req.Headers.Clone()

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		transportErr := &csapi.TransportError{Command: command, Err: err}
		c.observe(ctx, req, &csapi.Response{Duration: time.Since(start), Error: transportErr})

		return nil, transportErr
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		transportErr := &csapi.TransportError{
			Command:    command,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("reading response body: %w", err),
		}
		c.observe(ctx, req, &csapi.Response{StatusCode: httpResp.StatusCode, Duration: time.Since(start), Error: transportErr})

		return nil, transportErr
	}

	response := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		RequestID:  req.RequestID,
	}

	observed := &csapi.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		Duration:   time.Since(start),
	}

	if httpResp.StatusCode < nethttp.StatusOK || httpResp.StatusCode >= nethttp.StatusMultipleChoices {
		transportErr := &csapi.TransportError{
			Command:    command,
			StatusCode: httpResp.StatusCode,
			Body:       truncate(body),
		}

		apiErr, parseErr := csapi.ParseAPIError(body)
		if parseErr == nil {
			transportErr.Err = apiErr
		}

		observed.Error = transportErr
		c.observe(ctx, req, observed)

		return response, transportErr
	}

	err = c.chain.ExecuteResponseInterceptors(ctx, req, observed)
	if err != nil {
		return response, &csapi.TransportError{Command: command, StatusCode: httpResp.StatusCode, Err: err}
	}

	return response, nil
}

// observe runs response interceptors for a call that already failed; their
// own errors are dropped so the original failure is reported.
func (c *Client) observe(ctx context.Context, req *csapi.Request, resp *csapi.Response) {
	_ = c.chain.ExecuteResponseInterceptors(ctx, req, resp)
}

// EnvelopeKey returns the response envelope name of command.
func EnvelopeKey(command string) string {
	return strings.ToLower(command) + constants.EnvelopeSuffix
}

// Envelope returns the value stored under key in the response object.
func (r *Response) Envelope(key string) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage

	err := json.Unmarshal(r.Body, &envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidResponse, err)
	}

	raw, ok := envelope[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrMissingEnvelope, key)
	}

	return raw, nil
}

// neverRetry hands every outcome back to the caller after one attempt.
func neverRetry(_ context.Context, _ *nethttp.Response, _ error) (bool, error) {
	return false, nil
}

func truncate(body []byte) []byte {
	if len(body) <= constants.MaxErrorBodyLength {
		return body
	}

	return body[:constants.MaxErrorBodyLength]
}

// leveledLogger adapts csapi.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger csapi.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fields(keysAndValues))
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/constants.KeyValueSplitParts)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return out
}
