package commands

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/csapi/internal/constants"
)

// NewTemplatesCommand creates the templates command group.
func NewTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template"},
		Short:   "Manage templates",
		Long:    "List CloudStack VM templates",
	}

	cmd.AddCommand(newTemplatesListCommand())

	return cmd
}

func newTemplatesListCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Long:  "List templates matching a template filter (featured, self, selfexecutable, community, executable, all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			templates, err := client.Templates().List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			return render(cmd, templates, func(w io.Writer) error {
				rows := make([][]string, 0, len(templates))
				for _, template := range templates {
					rows = append(rows, []string{
						template.Name,
						template.ID,
						valueOr(template.OSTypeName),
						valueOr(template.ZoneName),
						strconv.FormatBool(template.IsReady),
					})
				}

				return renderTable(w, []string{"Name", "ID", "OS Type", "Zone", "Ready"}, rows, "No templates found")
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", constants.DefaultTemplateFilter, "template filter")

	return cmd
}
