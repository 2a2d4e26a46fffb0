package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// ZonesClient implements csapi.ZonesClient.
type ZonesClient struct {
	exec *executor
}

// List implements csapi.ZonesClient.List.
func (c *ZonesClient) List(ctx context.Context) ([]csapi.Zone, error) {
	zones, err := list[csapi.Zone](ctx, c.exec, constants.CommandListZones, nil)
	if err != nil {
		return nil, fmt.Errorf("listing zones: %w", err)
	}

	return zones, nil
}

func (c *ZonesClient) records(ctx context.Context) ([]csapi.ResourceRecord, error) {
	zones, err := records(ctx, c.exec, constants.CommandListZones, nil)
	if err != nil {
		return nil, fmt.Errorf("listing zones: %w", err)
	}

	return zones, nil
}
