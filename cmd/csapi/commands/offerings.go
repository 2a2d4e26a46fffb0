package commands

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

// NewOfferingsCommand creates the service offerings command group.
func NewOfferingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "offerings",
		Aliases: []string{"service-offerings", "offering"},
		Short:   "Manage service offerings",
		Long:    "List CloudStack compute service offerings",
	}

	cmd.AddCommand(newOfferingsListCommand())

	return cmd
}

func newOfferingsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List service offerings",
		Long:  "List all compute service offerings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			offerings, err := client.ServiceOfferings().List(cmd.Context())
			if err != nil {
				return err
			}

			return render(cmd, offerings, func(w io.Writer) error {
				rows := make([][]string, 0, len(offerings))
				for _, offering := range offerings {
					rows = append(rows, []string{
						offering.Name,
						offering.ID,
						strconv.Itoa(offering.CPUNumber),
						strconv.Itoa(offering.CPUSpeed),
						strconv.Itoa(offering.Memory),
					})
				}

				return renderTable(w, []string{"Name", "ID", "CPUs", "CPU (MHz)", "Memory (MB)"}, rows, "No service offerings found")
			})
		},
	}
}
