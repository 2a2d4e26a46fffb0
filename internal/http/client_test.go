package http_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/csapi/internal/constants"
	cshttp "github.com/fivetwenty-io/csapi/internal/http"
	"github.com/fivetwenty-io/csapi/internal/signer"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

const (
	testAPIKey = "test-key"
	testSecret = "test-secret"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

func (l *MockLogger) messages() []string {
	out := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		out = append(out, entry["msg"].(string))
	}

	return out
}

func newClient(url string, opts ...cshttp.Option) *cshttp.Client {
	return cshttp.NewClient(url, testAPIKey, signer.New(testSecret), opts...)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Call(t *testing.T) {
	t.Parallel()

	t.Run("signed form POST", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "/client/api", request.URL.Path)
			assert.Empty(t, request.URL.RawQuery)
			assert.Equal(t, "application/x-www-form-urlencoded", request.Header.Get("Content-Type"))
			assert.NotEmpty(t, request.Header.Get("X-Request-Id"))

			assert.NoError(t, request.ParseForm())
			form := request.PostForm
			assert.Equal(t, "listTemplates", form.Get("command"))
			assert.Equal(t, testAPIKey, form.Get("apikey"))
			assert.Equal(t, "json", form.Get("response"))
			assert.Equal(t, "featured", form.Get("templatefilter"))
			assert.False(t, form.Has("keyword"))

			params := map[string]string{}
			for key := range form {
				params[key] = form.Get(key)
			}

			expected := signer.New(testSecret).Signature(signer.Canonicalize(params))
			assert.Equal(t, expected, form.Get("signature"))

			_, _ = fmt.Fprint(writer, `{"listtemplatesresponse":{"count":1,"template":[{"id":"t1","name":"Tmpl1"}]}}`)
		}))
		defer server.Close()

		client := newClient(server.URL + "/client/api")

		resp, err := client.Call(context.Background(), "listTemplates", map[string]string{
			"templatefilter": "featured",
			"keyword":        "",
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.NotEmpty(t, resp.RequestID)

		envelope, err := resp.Envelope(cshttp.EnvelopeKey("listTemplates"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"count":1,"template":[{"id":"t1","name":"Tmpl1"}]}`, string(envelope))
	})

	t.Run("error status is a transport error", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(431)
			_, _ = fmt.Fprint(writer, `{"deployvirtualmachineresponse":{"uuidList":[],"errorcode":431,"cserrorcode":4350,"errortext":"Unable to find zone"}}`)
		}))
		defer server.Close()

		client := newClient(server.URL)

		resp, err := client.Call(context.Background(), "deployVirtualMachine", map[string]string{"zoneid": "nope"})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 431, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())

		transportErr := &csapi.TransportError{}
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, 431, transportErr.StatusCode)
		assert.Equal(t, "deployVirtualMachine", transportErr.Command)
		assert.True(t, csapi.IsTransport(err))

		apiErr := &csapi.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 431, apiErr.Code)
		assert.Equal(t, "Unable to find zone", apiErr.Text)
	})

	t.Run("server errors are not retried", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := newClient(server.URL)

		_, err := client.Call(context.Background(), "listZones", nil)
		require.Error(t, err)
		assert.Equal(t, csapi.KindTransport, csapi.KindOf(err))
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("network failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		url := server.URL
		server.Close()

		client := newClient(url, cshttp.WithTimeout(time.Second))

		resp, err := client.Call(context.Background(), "listZones", nil)
		require.Error(t, err)
		assert.Nil(t, resp)

		transportErr := &csapi.TransportError{}
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, 0, transportErr.StatusCode)
		assert.Error(t, transportErr.Unwrap())
	})

	t.Run("custom user agent and interceptor headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "csapi-test/2.0", request.Header.Get("User-Agent"))
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "fixed-id", request.Header.Get("X-Request-Id"))
			_, _ = fmt.Fprint(writer, `{"listzonesresponse":{}}`)
		}))
		defer server.Close()

		client := newClient(server.URL,
			cshttp.WithUserAgent("csapi-test/2.0"),
			cshttp.WithRequestIDFunc(func() string { return "fixed-id" }),
			cshttp.WithRequestInterceptor(csapi.HeaderInterceptor(map[string]string{"X-Custom-Header": "custom-value"})),
		)

		_, err := client.Call(context.Background(), "listZones", nil)
		require.NoError(t, err)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = fmt.Fprint(writer, `{"listzonesresponse":{}}`)
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := newClient(server.URL, cshttp.WithLogger(logger), cshttp.WithDebug(true))

		_, err := client.Call(context.Background(), "listZones", nil)
		require.NoError(t, err)

		messages := logger.messages()
		assert.Contains(t, messages, "HTTP Request")
		assert.Contains(t, messages, "HTTP Response")

		for _, entry := range logger.logs {
			rendered := fmt.Sprint(entry["fields"])
			assert.NotContains(t, rendered, testAPIKey)
			assert.NotContains(t, rendered, testSecret)
		}
	})

	t.Run("no logging without debug", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = fmt.Fprint(writer, `{"listzonesresponse":{}}`)
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := newClient(server.URL, cshttp.WithLogger(logger))

		_, err := client.Call(context.Background(), "listZones", nil)
		require.NoError(t, err)
		assert.Empty(t, logger.logs)
	})

	t.Run("failing request interceptor aborts the call", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
		}))
		defer server.Close()

		errBlocked := errors.New("blocked")
		client := newClient(server.URL, cshttp.WithRequestInterceptor(func(ctx context.Context, req *csapi.Request) error {
			return errBlocked
		}))

		_, err := client.Call(context.Background(), "listZones", nil)
		require.ErrorIs(t, err, errBlocked)
		assert.True(t, csapi.IsTransport(err))
		assert.Equal(t, int32(0), attempts.Load())
	})
}

func TestResponse_Envelope(t *testing.T) {
	t.Parallel()

	resp := &cshttp.Response{Body: []byte(`{"deployvirtualmachineresponse":{"id":"vm-1","jobid":"job-1"}}`)}

	raw, err := resp.Envelope("deployvirtualmachineresponse")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"vm-1","jobid":"job-1"}`, string(raw))

	_, err = resp.Envelope("listzonesresponse")
	require.ErrorIs(t, err, constants.ErrMissingEnvelope)

	bad := &cshttp.Response{Body: []byte(`not json`)}
	_, err = bad.Envelope("listzonesresponse")
	require.ErrorIs(t, err, constants.ErrInvalidResponse)
}

func TestEnvelopeKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "queryasyncjobresultresponse", cshttp.EnvelopeKey("queryAsyncJobResult"))
	assert.Equal(t, "listserviceofferingsresponse", cshttp.EnvelopeKey("listServiceOfferings"))
}
