package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// Failure messages of the VM operations.
const (
	opDeploy     = "VM deployment"
	opDeployAuto = "Auto VM deployment"
	opDestroy    = "VM deletion"
)

// VirtualMachinesClient implements csapi.VirtualMachinesClient.
type VirtualMachinesClient struct {
	exec             *executor
	zones            *ZonesClient
	templates        *TemplatesClient
	serviceOfferings *ServiceOfferingsClient
	resolver         *Resolver
	logger           csapi.Logger
}

// List implements csapi.VirtualMachinesClient.List. The state filter is
// applied locally and ignores case.
func (c *VirtualMachinesClient) List(ctx context.Context, state string) ([]csapi.VirtualMachine, error) {
	vms, err := list[csapi.VirtualMachine](ctx, c.exec, constants.CommandListVirtualMachines, nil)
	if err != nil {
		return nil, fmt.Errorf("listing VMs: %w", err)
	}

	filtered := vms[:0]

	for _, vm := range vms {
		if vm.HasState(state) {
			filtered = append(filtered, vm)
		}
	}

	return filtered, nil
}

// Deploy implements csapi.VirtualMachinesClient.Deploy.
func (c *VirtualMachinesClient) Deploy(ctx context.Context, request *csapi.DeployRequest) (*csapi.VirtualMachine, error) {
	vm, err := c.deploy(ctx, request)

	return vm, csapi.Fail(opDeploy, err)
}

// DeployByName implements csapi.VirtualMachinesClient.DeployByName. The
// zone, template and offering are looked up in that order before the
// deployment is submitted.
func (c *VirtualMachinesClient) DeployByName(ctx context.Context, vmName, zoneName, templateName, offeringName string) (*csapi.VirtualMachine, error) {
	request, err := c.resolveDeployment(ctx, vmName, zoneName, templateName, offeringName)
	if err != nil {
		return nil, csapi.Fail(opDeploy, err)
	}

	vm, err := c.deploy(ctx, request)

	return vm, csapi.Fail(opDeploy, err)
}

// DeployAuto implements csapi.VirtualMachinesClient.DeployAuto using the
// first zone, featured template and service offering listed.
func (c *VirtualMachinesClient) DeployAuto(ctx context.Context, vmName string) (*csapi.VirtualMachine, error) {
	request := &csapi.DeployRequest{Name: vmName, DisplayName: vmName}

	zones, err := c.zones.records(ctx)
	if err != nil {
		return nil, csapi.Fail(opDeployAuto, err)
	}

	request.ZoneID, err = first(constants.KeyZone, zones)
	if err != nil {
		return nil, csapi.Fail(opDeployAuto, err)
	}

	templates, err := c.templates.records(ctx)
	if err != nil {
		return nil, csapi.Fail(opDeployAuto, err)
	}

	request.TemplateID, err = first(constants.KeyTemplate, templates)
	if err != nil {
		return nil, csapi.Fail(opDeployAuto, err)
	}

	offerings, err := c.serviceOfferings.records(ctx)
	if err != nil {
		return nil, csapi.Fail(opDeployAuto, err)
	}

	request.ServiceOfferingID, err = first(constants.KeyServiceOffering, offerings)
	if err != nil {
		return nil, csapi.Fail(opDeployAuto, err)
	}

	vm, err := c.deploy(ctx, request)

	return vm, csapi.Fail(opDeployAuto, err)
}

// Destroy implements csapi.VirtualMachinesClient.Destroy. The VM is
// expunged.
func (c *VirtualMachinesClient) Destroy(ctx context.Context, id string) (*csapi.AsyncJob, error) {
	job, err := c.destroy(ctx, id)

	return job, csapi.Fail(opDestroy, err)
}

// DestroyByName implements csapi.VirtualMachinesClient.DestroyByName.
func (c *VirtualMachinesClient) DestroyByName(ctx context.Context, name string) (*csapi.AsyncJob, error) {
	vms, err := records(ctx, c.exec, constants.CommandListVirtualMachines, nil)
	if err != nil {
		return nil, csapi.Fail(opDestroy, fmt.Errorf("listing VMs: %w", err))
	}

	id, err := c.resolver.resolve(constants.KeyVirtualMachine, vms, constants.FieldName, name)
	if err != nil {
		return nil, csapi.Fail(opDestroy, err)
	}

	job, err := c.destroy(ctx, id)

	return job, csapi.Fail(opDestroy, err)
}

func (c *VirtualMachinesClient) resolveDeployment(ctx context.Context, vmName, zoneName, templateName, offeringName string) (*csapi.DeployRequest, error) {
	request := &csapi.DeployRequest{Name: vmName, DisplayName: vmName}

	zones, err := c.zones.records(ctx)
	if err != nil {
		return nil, err
	}

	request.ZoneID, err = c.resolver.resolve(constants.KeyZone, zones, constants.FieldName, zoneName)
	if err != nil {
		return nil, err
	}

	templates, err := c.templates.records(ctx)
	if err != nil {
		return nil, err
	}

	request.TemplateID, err = c.resolver.resolve(constants.KeyTemplate, templates, constants.FieldName, templateName)
	if err != nil {
		return nil, err
	}

	offerings, err := c.serviceOfferings.records(ctx)
	if err != nil {
		return nil, err
	}

	request.ServiceOfferingID, err = c.resolver.resolve(constants.KeyServiceOffering, offerings, constants.FieldName, offeringName)
	if err != nil {
		return nil, err
	}

	return request, nil
}

func (c *VirtualMachinesClient) deploy(ctx context.Context, request *csapi.DeployRequest) (*csapi.VirtualMachine, error) {
	op, err := c.exec.lookup(constants.CommandDeployVirtualMachine)
	if err != nil {
		return nil, err
	}

	c.info("Deploying VM", map[string]interface{}{
		"name":              request.Name,
		"zoneid":            request.ZoneID,
		"templateid":        request.TemplateID,
		"serviceofferingid": request.ServiceOfferingID,
	})

	job, err := c.exec.submit(ctx, op, request.Params())
	if err != nil {
		return nil, err
	}

	raw, err := field(job.Result, op.ResultKey)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}

	var vm csapi.VirtualMachine

	err = json.Unmarshal(raw, &vm)
	if err != nil {
		return nil, fmt.Errorf("parsing virtual machine: %w", err)
	}

	return &vm, nil
}

func (c *VirtualMachinesClient) destroy(ctx context.Context, id string) (*csapi.AsyncJob, error) {
	op, err := c.exec.lookup(constants.CommandDestroyVirtualMachine)
	if err != nil {
		return nil, err
	}

	c.info("Destroying VM", map[string]interface{}{"id": id})

	return c.exec.submit(ctx, op, map[string]string{constants.FieldID: id})
}

func (c *VirtualMachinesClient) info(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, fields)
	}
}

// first returns the id of the first record of a listing.
func first(resource string, records []csapi.ResourceRecord) (string, error) {
	for _, record := range records {
		id := record.ID()
		if id != "" {
			return id, nil
		}
	}

	return "", csapi.NewResourceNotFound(resource, "")
}
