package commands_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/csapi/cmd/csapi/commands"
)

func TestNewZonesCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewZonesCommand()
	assert.Equal(t, "zones", cmd.Use)
	assert.Equal(t, []string{"zone"}, cmd.Aliases)
	assert.Equal(t, "Manage zones", cmd.Short)

	list := findSubcommand(cmd, "list")
	require.NotNil(t, list)
	assert.NotNil(t, list.RunE)
}

func TestNewTemplatesCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewTemplatesCommand()
	assert.Equal(t, "templates", cmd.Use)

	list := findSubcommand(cmd, "list")
	require.NotNil(t, list)

	filter := list.Flags().Lookup("filter")
	require.NotNil(t, filter)
	assert.Equal(t, "featured", filter.DefValue)
}

func TestNewOfferingsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewOfferingsCommand()
	assert.Equal(t, "offerings", cmd.Use)
	assert.Contains(t, cmd.Aliases, "service-offerings")
	assert.NotNil(t, findSubcommand(cmd, "list"))
}

func TestNewSystemVMsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewSystemVMsCommand()
	assert.Equal(t, "system-vms", cmd.Use)
	assert.NotNil(t, findSubcommand(cmd, "list"))
}

func TestNewVMsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVMsCommand()
	assert.Equal(t, "vms", cmd.Use)
	assert.Equal(t, "Manage virtual machines", cmd.Short)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.ElementsMatch(t, []string{"list", "deploy", "deploy-auto", "destroy"}, names)
}

func TestVMsListCommand(t *testing.T) {
	t.Parallel()

	cmd := findSubcommand(commands.NewVMsCommand(), "list")
	require.NotNil(t, cmd)

	state := cmd.Flags().Lookup("state")
	require.NotNil(t, state)
	assert.Equal(t, "all", state.DefValue)
}

func TestVMsDeployCommand(t *testing.T) {
	t.Parallel()

	cmd := findSubcommand(commands.NewVMsCommand(), "deploy")
	require.NotNil(t, cmd)
	assert.Equal(t, "deploy NAME", cmd.Use)

	for _, name := range []string{"zone", "template", "offering"} {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag], name)
	}

	require.Error(t, cmd.Args(cmd, nil))
	require.NoError(t, cmd.Args(cmd, []string{"web-01"}))
}

func TestVMsDestroyCommand(t *testing.T) {
	t.Parallel()

	cmd := findSubcommand(commands.NewVMsCommand(), "destroy")
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"delete"}, cmd.Aliases)
	require.Error(t, cmd.Args(cmd, []string{"a", "b"}))
}

func TestNewJobsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewJobsCommand()
	assert.Equal(t, "jobs", cmd.Use)
	assert.NotNil(t, findSubcommand(cmd, "get"))

	poll := findSubcommand(cmd, "poll")
	require.NotNil(t, poll)

	timeout := poll.Flags().Lookup("timeout")
	require.NotNil(t, timeout)
	assert.Equal(t, "0s", timeout.DefValue)
}

func TestNewCallCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewCallCommand()
	assert.Equal(t, "call COMMAND [KEY=VALUE...]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("async"))
	require.Error(t, cmd.Args(cmd, nil))
}

func TestNewConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)

	for _, name := range []string{"show", "set", "unset"} {
		assert.NotNil(t, findSubcommand(cmd, name), name)
	}

	set := findSubcommand(cmd, "set")
	require.Error(t, set.Args(set, []string{"api"}))
}

func TestNewConfigureCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewConfigureCommand()
	assert.Equal(t, "configure", cmd.Use)
	require.Error(t, cmd.Args(cmd, []string{"extra"}))
}

func TestNewOperationsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewOperationsCommand()
	assert.Equal(t, "operations", cmd.Use)
	assert.NotNil(t, findSubcommand(cmd, "list"))
}

func TestNewVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVersionCommand("1.0.0", "abc123", "2026-01-01")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Display version information", cmd.Short)
}
