package client

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/csapi/internal/catalog"
	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config *csapi.Config
		want   error
	}{
		{name: "nil config", config: nil, want: constants.ErrConfigRequired},
		{name: "no endpoint", config: &csapi.Config{APIKey: "k", SecretKey: "s"}, want: constants.ErrAPIEndpointRequired},
		{name: "no api key", config: &csapi.Config{APIEndpoint: "http://cloud", SecretKey: "s"}, want: constants.ErrAPIKeyRequired},
		{name: "no secret", config: &csapi.Config{APIEndpoint: "http://cloud", APIKey: "k"}, want: constants.ErrSecretKeyRequired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := New(tt.config)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, client)
		})
	}
}

func TestNew_CatalogFileErrors(t *testing.T) {
	t.Parallel()

	_, err := New(&csapi.Config{
		APIEndpoint: "http://cloud",
		APIKey:      "k",
		SecretKey:   "s",
		CatalogFile: filepath.Join(t.TempDir(), "missing.toml"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading catalog")
}

func TestClient_Execute_Listing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cloud.on(constants.CommandListZones, listing(constants.CommandListZones, "zone", `[{"id":"z1","name":"Zone1"}]`))

	result, err := env.client.Execute(context.Background(), "listzones", csapi.Params{"available": "true", "name": ""})
	require.NoError(t, err)
	assert.Equal(t, "listZones", result.Operation)
	assert.Equal(t, "listZones", result.Command)
	assert.Nil(t, result.Job)
	assert.JSONEq(t, `{"count":1,"zone":[{"id":"z1","name":"Zone1"}]}`, string(result.Body))

	form := env.cloud.form(constants.CommandListZones)
	assert.Equal(t, "true", form.Get("available"))
	_, hasName := form["name"]
	assert.False(t, hasName, "empty parameters must not be sent")
}

func TestClient_Execute_Async(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cloud.
		on(constants.CommandDeployVirtualMachine, jobSubmitted(constants.CommandDeployVirtualMachine, "job-7")).
		on(constants.CommandQueryAsyncJobResult, jobPending("job-7"), jobSucceeded("job-7", deployedVM))

	result, err := env.client.Execute(context.Background(), constants.CommandDeployVirtualMachine, csapi.Params{
		"zoneid":            "z1",
		"templateid":        "t1",
		"serviceofferingid": "o1",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Job)
	assert.Equal(t, "job-7", result.Job.JobID)
	assert.Contains(t, string(result.Body), `"id":"vm-1"`)
	assert.NotContains(t, string(result.Body), `"virtualmachine"`)
}

func TestClient_Execute_AsyncResultKeyMissing(t *testing.T) {
	t.Parallel()

	logger := &testLogger{}
	env := newTestEnv(t, WithLogger(logger))
	env.cloud.
		on(constants.CommandDestroyVirtualMachine, jobSubmitted(constants.CommandDestroyVirtualMachine, "job-8")).
		on(constants.CommandQueryAsyncJobResult, jobSucceeded("job-8", `{"success":true}`))

	result, err := env.client.Execute(context.Background(), constants.CommandDestroyVirtualMachine, csapi.Params{"id": "vm-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(result.Body))
	assert.Contains(t, logger.messages("debug"), "Job result kept whole")
}

func TestClient_Execute_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.client.Execute(context.Background(), "launchRocket", nil)
	require.ErrorIs(t, err, constants.ErrUnknownOperation)
	assert.Equal(t, "launchRocket failed: unknown operation: launchRocket", err.Error())

	_, err = env.client.Execute(context.Background(), constants.CommandDestroyVirtualMachine, nil)
	require.ErrorIs(t, err, constants.ErrMissingParameter)
	assert.Empty(t, env.cloud.commands())
}

func TestClient_Execute_MissingJobID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cloud.on(constants.CommandDestroyVirtualMachine, `{"destroyvirtualmachineresponse":{}}`)

	_, err := env.client.Execute(context.Background(), constants.CommandDestroyVirtualMachine, csapi.Params{"id": "vm-1"})
	require.ErrorIs(t, err, constants.ErrMissingJobID)
}

func TestClient_Execute_TransportError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cloud.onStatus(constants.CommandListZones, 431, `{"listzonesresponse":{"uuidList":[],"errorcode":431,"cserrorcode":9999,"errortext":"Unable to execute API command listzones due to invalid value"}}`)

	_, err := env.client.Execute(context.Background(), constants.CommandListZones, nil)
	require.Error(t, err)
	assert.True(t, csapi.IsTransport(err))

	var transportErr *csapi.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 431, transportErr.StatusCode)

	var apiErr *csapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 431, apiErr.Code)
}

func TestClient_Run_AdHoc(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cloud.on("listNetworks", `{"listnetworksresponse":{"count":1,"network":[{"id":"n1"}]}}`)

	op := catalog.AdHoc("listNetworks", false)

	result, err := env.client.Run(context.Background(), &op, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1,"network":[{"id":"n1"}]}`, string(result.Body))
}

func TestClient_CatalogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[operation]]
command = "listNetworks"
result_key = "network"
`), constants.ConfigFilePerm))

	cloud := newFakeCloud(t)
	cloud.on("listNetworks", `{"listnetworksresponse":{"network":[{"id":"n1","name":"guest"}]}}`)

	server := newServer(t, cloud)

	client, err := New(&csapi.Config{
		APIEndpoint: server,
		APIKey:      testAPIKey,
		SecretKey:   testSecret,
		CatalogFile: path,
	})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Execute(context.Background(), "listnetworks", nil)
	require.NoError(t, err)
	assert.Contains(t, string(result.Body), "guest")
}

func TestClient_Listings(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cloud.
		on(constants.CommandListZones, listing(constants.CommandListZones, "zone", "")).
		on(constants.CommandListTemplates, listing(constants.CommandListTemplates, "template", `[{"id":"t1","name":"Tmpl1","isready":true,"ostypename":"Ubuntu 24.04"}]`)).
		on(constants.CommandListServiceOfferings, listing(constants.CommandListServiceOfferings, "serviceoffering", `[{"id":"o1","name":"Small","cpunumber":1,"memory":512}]`)).
		on(constants.CommandListSystemVMs, listing(constants.CommandListSystemVMs, "systemvm", `[{"id":"s1","name":"v-1-VM","state":"Running","systemvmtype":"consoleproxy"}]`))

	ctx := context.Background()

	zones, err := env.client.Zones().List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, zones)
	assert.Empty(t, zones)

	templates, err := env.client.Templates().List(ctx, "self")
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.True(t, templates[0].IsReady)
	assert.Equal(t, "Ubuntu 24.04", templates[0].OSTypeName)
	assert.Equal(t, "self", env.cloud.form(constants.CommandListTemplates).Get("templatefilter"))

	offerings, err := env.client.ServiceOfferings().List(ctx)
	require.NoError(t, err)
	require.Len(t, offerings, 1)
	assert.Equal(t, 512, offerings[0].Memory)

	systemVMs, err := env.client.SystemVMs().List(ctx)
	require.NoError(t, err)
	require.Len(t, systemVMs, 1)
	assert.Equal(t, "consoleproxy", systemVMs[0].SystemVMType)
}

func TestClient_Listing_TransportError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cloud.onStatus(constants.CommandListZones, http.StatusUnauthorized, `{"listzonesresponse":{"errorcode":401,"errortext":"unable to verify user credentials and/or request signature"}}`)

	_, err := env.client.Zones().List(context.Background())
	require.Error(t, err)
	assert.True(t, csapi.IsTransport(err))
	assert.Contains(t, err.Error(), "listing zones")
}

func TestClient_Close(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.client.Close()
	assert.True(t, env.publisher.closed)
}
