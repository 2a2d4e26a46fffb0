package commands_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/csapi/internal/signer"
)

const (
	testAPIKey = "test-key"
	testSecret = "test-secret"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// fakeAPI answers signed calls with canned bodies keyed by lower-cased
// command name.
type fakeAPI struct {
	t      *testing.T
	bodies map[string]string

	mu       sync.Mutex
	commands []string
	forms    []map[string]string
}

func newFakeAPI(t *testing.T, bodies map[string]string) *fakeAPI {
	t.Helper()

	api := &fakeAPI{t: t, bodies: map[string]string{}}
	for command, body := range bodies {
		api.bodies[strings.ToLower(command)] = body
	}

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	useAPI(t, server.URL)

	return api
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, http.MethodPost, r.Method)
	assert.Equal(f.t, "/client/api", r.URL.Path)

	if !assert.NoError(f.t, r.ParseForm()) {
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	params := map[string]string{}
	for key := range r.PostForm {
		params[key] = r.PostForm.Get(key)
	}

	signature := params["signature"]
	delete(params, "signature")
	assert.Equal(f.t, signer.New(testSecret).Sign(params)["signature"], signature)
	assert.Equal(f.t, testAPIKey, params["apikey"])

	command := strings.ToLower(params["command"])

	f.mu.Lock()
	f.commands = append(f.commands, params["command"])
	f.forms = append(f.forms, params)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	body, ok := f.bodies[command]
	if !ok {
		w.WriteHeader(432)
		_, _ = w.Write([]byte(`{"errorresponse":{"errorcode":432,"errortext":"The given command does not exist"}}`))

		return
	}

	_, _ = w.Write([]byte(body))
}

func (f *fakeAPI) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.commands...)
}

func (f *fakeAPI) lastForm() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.forms) == 0 {
		return nil
	}

	return f.forms[len(f.forms)-1]
}

// useAPI points the global configuration at endpoint for the duration of
// the test. Tests using it must not run in parallel.
func useAPI(t *testing.T, endpoint string) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("api", endpoint)
	viper.Set("api_key", testAPIKey)
	viper.Set("secret_key", testSecret)
	viper.Set("poll_interval", time.Millisecond)
	viper.Set("poll_timeout", time.Second)
	viper.Set("output", "json")
}

// execute runs cmd with args and returns what it wrote.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func mustExecute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()

	out, err := execute(t, cmd, args...)
	require.NoError(t, err)

	return out
}
