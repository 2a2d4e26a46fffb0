package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// SystemVMsClient implements csapi.SystemVMsClient.
type SystemVMsClient struct {
	exec *executor
}

// List implements csapi.SystemVMsClient.List.
func (c *SystemVMsClient) List(ctx context.Context) ([]csapi.SystemVM, error) {
	vms, err := list[csapi.SystemVM](ctx, c.exec, constants.CommandListSystemVMs, nil)
	if err != nil {
		return nil, fmt.Errorf("listing system VMs: %w", err)
	}

	return vms, nil
}
