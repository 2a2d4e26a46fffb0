package commands

import (
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/csapi/internal/catalog"
)

// NewOperationsCommand creates the operations command group.
func NewOperationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "operations",
		Aliases: []string{"ops"},
		Short:   "Inspect the operation catalog",
		Long:    "List the operations known to the client, including those loaded from the catalog file",
	}

	cmd.AddCommand(newOperationsListCommand())

	return cmd
}

func newOperationsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List operations",
		Long:  "List the built-in operations and those defined in the configured catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadOperations(viper.GetString("catalog_file"))
			if err != nil {
				return err
			}

			operations := cat.Operations()

			return render(cmd, operations, func(w io.Writer) error {
				rows := make([][]string, 0, len(operations))
				for _, op := range operations {
					rows = append(rows, []string{
						op.Name,
						op.Command,
						strconv.FormatBool(op.Async),
						valueOr(strings.Join(op.Required, ", ")),
						valueOr(strings.Join(op.Optional, ", ")),
						valueOr(op.ResultKey),
					})
				}

				header := []string{"Name", "Command", "Async", "Required", "Optional", "Result Key"}

				return renderTable(w, header, rows, "No operations defined")
			})
		},
	}
}

func loadOperations(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}

	return catalog.FromFile(path)
}
