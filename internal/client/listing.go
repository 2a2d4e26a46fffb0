package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// list runs the listing operation name and decodes the records stored under
// its result key. An absent key is an empty listing.
func list[T any](ctx context.Context, e *executor, name string, params map[string]string) ([]T, error) {
	op, err := e.lookup(name)
	if err != nil {
		return nil, err
	}

	envelope, err := e.call(ctx, op, params)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage

	err = json.Unmarshal(envelope, &fields)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", op.Command, err)
	}

	items := []T{}

	raw, ok := fields[op.ResultKey]
	if !ok {
		return items, nil
	}

	err = json.Unmarshal(raw, &items)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", op.Command, err)
	}

	return items, nil
}

// records lists name untyped, for name resolution.
func records(ctx context.Context, e *executor, name string, params map[string]string) ([]csapi.ResourceRecord, error) {
	return list[csapi.ResourceRecord](ctx, e, name, params)
}
