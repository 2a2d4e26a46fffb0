package commands

import (
	"io"

	"github.com/spf13/cobra"
)

// NewSystemVMsCommand creates the system VMs command group.
func NewSystemVMsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "system-vms",
		Aliases: []string{"systemvms", "svms"},
		Short:   "Manage system VMs",
		Long:    "List CloudStack system VMs such as console proxies and secondary storage VMs",
	}

	cmd.AddCommand(newSystemVMsListCommand())

	return cmd
}

func newSystemVMsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List system VMs",
		Long:  "List all system VMs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			systemVMs, err := client.SystemVMs().List(cmd.Context())
			if err != nil {
				return err
			}

			return render(cmd, systemVMs, func(w io.Writer) error {
				rows := make([][]string, 0, len(systemVMs))
				for _, systemVM := range systemVMs {
					rows = append(rows, []string{
						systemVM.Name,
						systemVM.ID,
						valueOr(systemVM.SystemVMType),
						valueOr(systemVM.State),
						valueOr(systemVM.PublicIP),
						valueOr(systemVM.ZoneName),
					})
				}

				return renderTable(w, []string{"Name", "ID", "Type", "State", "Public IP", "Zone"}, rows, "No system VMs found")
			})
		},
	}
}
