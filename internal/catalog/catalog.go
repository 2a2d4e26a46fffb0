// Package catalog describes the API operations the client knows how to run:
// the command name, its parameters and where its result lives in the
// response.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fivetwenty-io/csapi/internal/constants"
)

// Operation is one runnable API command.
type Operation struct {
	// Name identifies the operation; it defaults to Command.
	Name string `json:"name" toml:"name" yaml:"name"`
	// Command is the API command name.
	Command string `json:"command" toml:"command" yaml:"command"`
	// Params are fixed parameters sent with every call. Caller values win.
	Params map[string]string `json:"params,omitempty" toml:"params" yaml:"params,omitempty"`
	// Required parameters must be non-empty after merging.
	Required []string `json:"required,omitempty" toml:"required" yaml:"required,omitempty"`
	// Optional parameters are accepted but not checked.
	Optional []string `json:"optional,omitempty" toml:"optional" yaml:"optional,omitempty"`
	// EnvelopeKey overrides "<lower(command)>response".
	EnvelopeKey string `json:"envelope_key,omitempty" toml:"envelope_key" yaml:"envelope_key,omitempty"`
	// ResultKey is the listing key inside the envelope, or for
	// asynchronous operations the key inside the job result. A job result
	// without the key is returned whole.
	ResultKey string `json:"result_key,omitempty" toml:"result_key" yaml:"result_key,omitempty"`
	// Async marks commands that answer with a job id.
	Async bool `json:"async" toml:"async" yaml:"async"`
}

// Envelope returns the response envelope key.
func (o *Operation) Envelope() string {
	if o.EnvelopeKey != "" {
		return o.EnvelopeKey
	}

	return strings.ToLower(o.Command) + constants.EnvelopeSuffix
}

// Build merges the fixed parameters with params and checks required ones.
func (o *Operation) Build(params map[string]string) (map[string]string, error) {
	merged := make(map[string]string, len(o.Params)+len(params))

	for key, value := range o.Params {
		merged[key] = value
	}

	for key, value := range params {
		if value != "" {
			merged[key] = value
		}
	}

	var missing []string

	for _, key := range o.Required {
		if merged[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", o.Name, constants.ErrMissingParameter, strings.Join(missing, ", "))
	}

	return merged, nil
}

func (o *Operation) normalize() error {
	if o.Command == "" {
		return fmt.Errorf("%w: command is required", constants.ErrOperationInvalid)
	}

	if o.Name == "" {
		o.Name = o.Command
	}

	return nil
}

// AdHoc returns an operation for a command that is not in any catalog.
func AdHoc(command string, async bool) Operation {
	return Operation{Name: command, Command: command, Async: async}
}

// Catalog is a set of operations keyed by case-insensitive name.
type Catalog struct {
	operations map[string]*Operation
}

// New builds a catalog from ops.
func New(ops ...Operation) (*Catalog, error) {
	c := &Catalog{operations: make(map[string]*Operation, len(ops))}

	for _, op := range ops {
		err := c.Add(op)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Add registers op. Names must be unique.
func (c *Catalog) Add(op Operation) error {
	err := op.normalize()
	if err != nil {
		return err
	}

	key := strings.ToLower(op.Name)
	if _, exists := c.operations[key]; exists {
		return fmt.Errorf("%w: %s", constants.ErrDuplicateOperation, op.Name)
	}

	c.operations[key] = &op

	return nil
}

// Override registers op, replacing any operation with the same name.
func (c *Catalog) Override(op Operation) error {
	err := op.normalize()
	if err != nil {
		return err
	}

	c.operations[strings.ToLower(op.Name)] = &op

	return nil
}

// Lookup returns the operation called name.
func (c *Catalog) Lookup(name string) (*Operation, error) {
	op, ok := c.operations[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownOperation, name)
	}

	return op, nil
}

// MustLookup is Lookup for names known to exist.
func (c *Catalog) MustLookup(name string) *Operation {
	op, err := c.Lookup(name)
	if err != nil {
		panic(err)
	}

	return op
}

// Operations returns all operations sorted by name.
func (c *Catalog) Operations() []*Operation {
	ops := make([]*Operation, 0, len(c.operations))
	for _, op := range c.operations {
		ops = append(ops, op)
	}

	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })

	return ops
}

type file struct {
	Operations []Operation `toml:"operation"`
}

// LoadFile reads operations from a TOML file:
//
//	[[operation]]
//	name = "listNetworks"
//	command = "listNetworks"
//	result_key = "network"
//	optional = ["zoneid"]
func LoadFile(path string) ([]Operation, error) {
	var f file

	_, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(f.Operations))

	for i := range f.Operations {
		err = f.Operations[i].normalize()
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: operation %d: %w", path, i+1, err)
		}

		key := strings.ToLower(f.Operations[i].Name)
		if seen[key] {
			return nil, fmt.Errorf("reading catalog %s: %w: %s", path, constants.ErrDuplicateOperation, f.Operations[i].Name)
		}

		seen[key] = true
	}

	return f.Operations, nil
}

// FromFile returns the default catalog extended with the operations of
// path. File operations replace built-ins of the same name.
func FromFile(path string) (*Catalog, error) {
	c := Default()

	ops, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	for _, op := range ops {
		err = c.Override(op)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}
