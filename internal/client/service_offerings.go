package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// ServiceOfferingsClient implements csapi.ServiceOfferingsClient.
type ServiceOfferingsClient struct {
	exec *executor
}

// List implements csapi.ServiceOfferingsClient.List.
func (c *ServiceOfferingsClient) List(ctx context.Context) ([]csapi.ServiceOffering, error) {
	offerings, err := list[csapi.ServiceOffering](ctx, c.exec, constants.CommandListServiceOfferings, nil)
	if err != nil {
		return nil, fmt.Errorf("listing service offerings: %w", err)
	}

	return offerings, nil
}

func (c *ServiceOfferingsClient) records(ctx context.Context) ([]csapi.ResourceRecord, error) {
	offerings, err := records(ctx, c.exec, constants.CommandListServiceOfferings, nil)
	if err != nil {
		return nil, fmt.Errorf("listing service offerings: %w", err)
	}

	return offerings, nil
}
