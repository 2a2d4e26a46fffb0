package client

import (
	"strings"

	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// Resolver maps user supplied names to resource ids.
type Resolver struct {
	policy csapi.DuplicatePolicy
}

// NewResolver creates a resolver applying policy to duplicate names.
func NewResolver(policy csapi.DuplicatePolicy) *Resolver {
	return &Resolver{policy: policy}
}

// Resolve returns the id of the record whose nameField equals target,
// ignoring case. Records without a string nameField never match.
func (r *Resolver) Resolve(records []csapi.ResourceRecord, nameField, target string) (string, error) {
	return r.resolve("", records, nameField, target)
}

func (r *Resolver) resolve(resource string, records []csapi.ResourceRecord, nameField, target string) (string, error) {
	var ids []string

	for _, record := range records {
		name, ok := record.String(nameField)
		if !ok || !strings.EqualFold(name, target) {
			continue
		}

		id := record.ID()
		if id == "" {
			continue
		}

		if r.policy == csapi.DuplicateFirstMatch {
			return id, nil
		}

		ids = append(ids, id)
	}

	switch len(ids) {
	case 0:
		return "", csapi.NewResourceNotFound(resource, target)
	case 1:
		return ids[0], nil
	default:
		return "", &csapi.AmbiguousNameError{Name: target, IDs: ids}
	}
}

// Resolve resolves target with the default duplicate policy.
func Resolve(records []csapi.ResourceRecord, nameField, target string) (string, error) {
	return NewResolver(csapi.DuplicateError).Resolve(records, nameField, target)
}
