package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// NewVMsCommand creates the virtual machines command group.
func NewVMsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vms",
		Aliases: []string{"vm", "virtual-machines"},
		Short:   "Manage virtual machines",
		Long:    "List, deploy and destroy CloudStack virtual machines",
	}

	cmd.AddCommand(newVMsListCommand())
	cmd.AddCommand(newVMsDeployCommand())
	cmd.AddCommand(newVMsDeployAutoCommand())
	cmd.AddCommand(newVMsDestroyCommand())

	return cmd
}

func newVMsListCommand() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List virtual machines",
		Long:  "List virtual machines, optionally only those in a given state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			vms, err := client.VirtualMachines().List(cmd.Context(), state)
			if err != nil {
				return err
			}

			return render(cmd, vms, func(w io.Writer) error {
				rows := make([][]string, 0, len(vms))
				for i := range vms {
					vm := &vms[i]
					rows = append(rows, []string{
						vm.Name,
						vm.ID,
						valueOr(vm.State),
						valueOr(vm.IPAddress()),
						valueOr(vm.ZoneName),
					})
				}

				return renderTable(w, []string{"Name", "ID", "State", "IP Address", "Zone"}, rows, "No virtual machines found")
			})
		},
	}

	cmd.Flags().StringVar(&state, "state", constants.StateFilterAll, "only list VMs in this state (Running, Stopped, ...)")

	return cmd
}

func newVMsDeployCommand() *cobra.Command {
	var zone, template, offering string

	cmd := &cobra.Command{
		Use:   "deploy NAME",
		Short: "Deploy a virtual machine",
		Long:  "Deploy a virtual machine, resolving the zone, template and service offering by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			vm, err := client.VirtualMachines().DeployByName(cmd.Context(), args[0], zone, template, offering)
			if err != nil {
				return err
			}

			return renderVM(cmd, vm)
		},
	}

	cmd.Flags().StringVar(&zone, "zone", "", "zone name")
	cmd.Flags().StringVar(&template, "template", "", "template name")
	cmd.Flags().StringVar(&offering, "offering", "", "service offering name")
	_ = cmd.MarkFlagRequired("zone")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("offering")

	return cmd
}

func newVMsDeployAutoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy-auto NAME",
		Short: "Deploy a virtual machine with the first available placement",
		Long:  "Deploy a virtual machine in the first zone, with the first featured template and the first service offering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			vm, err := client.VirtualMachines().DeployAuto(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return renderVM(cmd, vm)
		},
	}
}

func newVMsDestroyCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "destroy NAME",
		Aliases: []string{"delete"},
		Short:   "Destroy a virtual machine",
		Long:    "Destroy and expunge the virtual machine with the given name",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			job, err := client.VirtualMachines().DestroyByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			if format != constants.FormatTable {
				return render(cmd, job, nil)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "VM '%s' deleted successfully.\n", args[0])

			return err
		},
	}
}

func renderVM(cmd *cobra.Command, vm *csapi.VirtualMachine) error {
	return render(cmd, vm, func(w io.Writer) error {
		return renderProperties(w, [][]string{
			{"Name", vm.Name},
			{"ID", vm.ID},
			{"State", valueOr(vm.State)},
			{"IP Address", valueOr(vm.IPAddress())},
			{"Zone", valueOr(vm.ZoneName)},
			{"Template", valueOr(vm.TemplateName)},
			{"Service Offering", valueOr(vm.ServiceOfferingName)},
		})
	})
}
