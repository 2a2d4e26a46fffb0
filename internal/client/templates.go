package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// TemplatesClient implements csapi.TemplatesClient.
type TemplatesClient struct {
	exec *executor
}

// List implements csapi.TemplatesClient.List.
func (c *TemplatesClient) List(ctx context.Context, filter string) ([]csapi.Template, error) {
	templates, err := list[csapi.Template](ctx, c.exec, constants.CommandListTemplates, filterParams(filter))
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	return templates, nil
}

func (c *TemplatesClient) records(ctx context.Context) ([]csapi.ResourceRecord, error) {
	templates, err := records(ctx, c.exec, constants.CommandListTemplates, filterParams(""))
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	return templates, nil
}

func filterParams(filter string) map[string]string {
	if filter == "" {
		filter = constants.DefaultTemplateFilter
	}

	return map[string]string{"templatefilter": filter}
}
