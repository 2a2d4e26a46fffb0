package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/csapi/internal/catalog"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// ErrRawCallsUnsupported is returned when the client cannot run uncatalogued commands.
var ErrRawCallsUnsupported = errors.New("client does not support uncatalogued commands")

// operationRunner is implemented by clients that expose their catalog.
type operationRunner interface {
	Catalog() *catalog.Catalog
	Run(ctx context.Context, op *catalog.Operation, params csapi.Params) (*csapi.Result, error)
}

// callView is the printable form of a call result.
type callView struct {
	Operation string      `json:"operation"       yaml:"operation"`
	Command   string      `json:"command"         yaml:"command"`
	JobID     string      `json:"jobid,omitempty" yaml:"jobid,omitempty"`
	Body      interface{} `json:"body"            yaml:"body"`
}

// NewCallCommand creates the raw call command.
func NewCallCommand() *cobra.Command {
	var async bool

	cmd := &cobra.Command{
		Use:   "call COMMAND [KEY=VALUE...]",
		Short: "Call an API command",
		Long: `Send a signed call for any API command.

Catalogued operations use their fixed and required parameters. Other commands
are sent as given; use --async to poll the job they start.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			runner, ok := client.(operationRunner)
			if !ok {
				return ErrRawCallsUnsupported
			}

			op := resolveOperation(runner.Catalog(), args[0], async)

			result, err := runner.Run(cmd.Context(), op, params)
			if err != nil {
				return err
			}

			return renderResult(cmd, result)
		},
	}

	cmd.Flags().BoolVar(&async, "async", false, "poll the job started by the command")

	return cmd
}

// resolveOperation returns the catalog entry for name, or an ad hoc
// operation when the catalog has none. async forces polling.
func resolveOperation(cat *catalog.Catalog, name string, async bool) *catalog.Operation {
	op, err := cat.Lookup(name)
	if err != nil {
		adHoc := catalog.AdHoc(name, async)

		return &adHoc
	}

	if async && !op.Async {
		forced := *op
		forced.Async = true

		return &forced
	}

	return op
}

func renderResult(cmd *cobra.Command, result *csapi.Result) error {
	body, err := rawValue(result.Body)
	if err != nil {
		return err
	}

	view := &callView{Operation: result.Operation, Command: result.Command, Body: body}
	if result.Job != nil {
		view.JobID = result.Job.JobID
	}

	return render(cmd, view, func(w io.Writer) error {
		if view.JobID != "" {
			_, err := fmt.Fprintf(w, "Job %s completed\n", view.JobID)
			if err != nil {
				return err
			}
		}

		return writeJSON(w, body)
	})
}
