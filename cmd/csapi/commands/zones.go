package commands

import (
	"io"

	"github.com/spf13/cobra"
)

// NewZonesCommand creates the zones command group.
func NewZonesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "zones",
		Aliases: []string{"zone"},
		Short:   "Manage zones",
		Long:    "List CloudStack availability zones",
	}

	cmd.AddCommand(newZonesListCommand())

	return cmd
}

func newZonesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List zones",
		Long:  "List all zones visible to the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			zones, err := client.Zones().List(cmd.Context())
			if err != nil {
				return err
			}

			return render(cmd, zones, func(w io.Writer) error {
				rows := make([][]string, 0, len(zones))
				for _, zone := range zones {
					rows = append(rows, []string{zone.Name, zone.ID, valueOr(zone.AllocationState), valueOr(zone.NetworkType)})
				}

				return renderTable(w, []string{"Name", "ID", "Allocation", "Network"}, rows, "No zones found")
			})
		},
	}
}
