package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/csapi/internal/clock"
	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/internal/events"
	"github.com/fivetwenty-io/csapi/internal/signer"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

const (
	testAPIKey = "test-key"
	testSecret = "test-secret"
)

const unknownCommandBody = `{"errorresponse":{"errorcode":432,"errortext":"The given command does not exist"}}`

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeCloud is an API server answering from canned bodies. Each command
// has a queue of responses; the last one repeats. Every call must be a
// correctly signed form POST.
type fakeCloud struct {
	t *testing.T

	mu        sync.Mutex
	responses map[string][]cannedResponse
	calls     []url.Values

	// onCall runs for every call before the response is written.
	onCall func(command string)
}

type cannedResponse struct {
	status int
	body   string
}

func newFakeCloud(t *testing.T) *fakeCloud {
	t.Helper()

	return &fakeCloud{t: t, responses: map[string][]cannedResponse{}}
}

func (f *fakeCloud) on(command string, bodies ...string) *fakeCloud {
	for _, body := range bodies {
		f.onStatus(command, http.StatusOK, body)
	}

	return f
}

func (f *fakeCloud) onStatus(command string, status int, body string) *fakeCloud {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(command)
	f.responses[key] = append(f.responses[key], cannedResponse{status: status, body: body})

	return f
}

func (f *fakeCloud) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, http.MethodPost, r.Method)
	assert.Equal(f.t, constants.ContentTypeForm, r.Header.Get(constants.HeaderContentType))
	assert.Empty(f.t, r.URL.RawQuery)

	if !assert.NoError(f.t, r.ParseForm()) {
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	form := r.PostForm
	assert.Equal(f.t, testAPIKey, form.Get(constants.ParamAPIKey))
	assert.Equal(f.t, constants.ResponseFormatJSON, form.Get(constants.ParamResponse))

	unsigned := map[string]string{}
	for key := range form {
		unsigned[key] = form.Get(key)
	}

	expected := signer.New(testSecret).Sign(unsigned)[constants.ParamSignature]
	assert.Equal(f.t, expected, form.Get(constants.ParamSignature), "signature mismatch")

	command := form.Get(constants.ParamCommand)

	f.mu.Lock()
	f.calls = append(f.calls, form)
	onCall := f.onCall

	key := strings.ToLower(command)
	queue := f.responses[key]

	response := cannedResponse{status: 432, body: unknownCommandBody}
	if len(queue) > 0 {
		response = queue[0]
		if len(queue) > 1 {
			f.responses[key] = queue[1:]
		}
	}
	f.mu.Unlock()

	if onCall != nil {
		onCall(command)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.status)
	_, _ = w.Write([]byte(response.body))
}

// commands returns the command of every call, in order.
func (f *fakeCloud) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.calls))
	for _, form := range f.calls {
		out = append(out, form.Get(constants.ParamCommand))
	}

	return out
}

// count returns how many times command was called.
func (f *fakeCloud) count(command string) int {
	n := 0

	for _, c := range f.commands() {
		if strings.EqualFold(c, command) {
			n++
		}
	}

	return n
}

// form returns the form of the first call of command.
func (f *fakeCloud) form(command string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, form := range f.calls {
		if strings.EqualFold(form.Get(constants.ParamCommand), command) {
			return form
		}
	}

	f.t.Fatalf("command %s was never called", command)

	return nil
}

// recordingPublisher keeps every published job event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.JobEvent
	closed bool
}

func (p *recordingPublisher) PublishJob(_ context.Context, event *events.JobEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
}

func (p *recordingPublisher) published() []*events.JobEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*events.JobEvent(nil), p.events...)
}

// testEnv bundles a client wired to a fake cloud and a fake clock.
type testEnv struct {
	cloud     *fakeCloud
	clock     *clock.FakeClock
	publisher *recordingPublisher
	client    *Client
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	cloud := newFakeCloud(t)

	env := &testEnv{
		cloud:     cloud,
		clock:     clock.Fake(testEpoch),
		publisher: &recordingPublisher{},
	}

	base := []Option{WithClock(env.clock), WithPublisher(env.publisher)}

	client, err := New(&csapi.Config{
		APIEndpoint: newServer(t, cloud),
		APIKey:      testAPIKey,
		SecretKey:   testSecret,
	}, append(base, opts...)...)
	require.NoError(t, err)

	env.client = client

	return env
}

// newServer serves cloud for the duration of the test and returns its URL.
func newServer(t *testing.T, cloud *fakeCloud) string {
	t.Helper()

	server := httptest.NewServer(cloud)
	t.Cleanup(server.Close)

	return server.URL
}

func listing(command, key, items string) string {
	if items == "" {
		return `{"` + strings.ToLower(command) + `response":{}}`
	}

	return `{"` + strings.ToLower(command) + `response":{"count":1,"` + key + `":` + items + `}}`
}

func jobSubmitted(command, jobID string) string {
	return `{"` + strings.ToLower(command) + `response":{"id":"vm-1","jobid":"` + jobID + `"}}`
}

func jobPending(jobID string) string {
	return `{"queryasyncjobresultresponse":{"jobid":"` + jobID + `","jobstatus":0,"jobresultcode":0,"cmd":"org.apache.cloudstack.api.command.user.vm.DeployVMCmd"}}`
}

func jobSucceeded(jobID, result string) string {
	return `{"queryasyncjobresultresponse":{"jobid":"` + jobID + `","jobstatus":1,"jobresultcode":0,"jobresulttype":"object","jobresult":` + result + `}}`
}

func jobFailed(jobID string) string {
	return `{"queryasyncjobresultresponse":{"jobid":"` + jobID + `","jobstatus":2,"jobresultcode":530,"jobresulttype":"object","jobresult":{"errorcode":530,"errortext":"Insufficient capacity"}}}`
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

// testLogger records log calls.
type testLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *testLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *testLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *testLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *testLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *testLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

func (l *testLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string

	for _, entry := range l.entries {
		if entry.level == level {
			out = append(out, entry.msg)
		}
	}

	return out
}
