package catalog

import "github.com/fivetwenty-io/csapi/internal/constants"

// Builtin returns the operations used by the resource clients.
func Builtin() []Operation {
	return []Operation{
		{
			Command:  constants.CommandQueryAsyncJobResult,
			Required: []string{constants.ParamJobID},
		},
		{
			Command:   constants.CommandListZones,
			ResultKey: constants.KeyZone,
			Optional:  []string{"id", "name", "available"},
		},
		{
			Command:   constants.CommandListTemplates,
			Params:    map[string]string{"templatefilter": constants.DefaultTemplateFilter},
			Required:  []string{"templatefilter"},
			Optional:  []string{"id", "name", "zoneid"},
			ResultKey: constants.KeyTemplate,
		},
		{
			Command:   constants.CommandListServiceOfferings,
			ResultKey: constants.KeyServiceOffering,
			Optional:  []string{"id", "name"},
		},
		{
			Command:   constants.CommandListVirtualMachines,
			ResultKey: constants.KeyVirtualMachine,
			Optional:  []string{"id", "name", "state", "zoneid"},
		},
		{
			Command:   constants.CommandListSystemVMs,
			ResultKey: constants.KeySystemVM,
			Optional:  []string{"id", "name", "state", "systemvmtype", "zoneid"},
		},
		{
			Command:   constants.CommandDeployVirtualMachine,
			Required:  []string{"zoneid", "templateid", "serviceofferingid"},
			Optional:  []string{"name", "displayname"},
			ResultKey: constants.KeyVirtualMachine,
			Async:     true,
		},
		{
			Command:   constants.CommandDestroyVirtualMachine,
			Params:    map[string]string{"expunge": "true"},
			Required:  []string{"id"},
			ResultKey: constants.KeyVirtualMachine,
			Async:     true,
		},
	}
}

// Default returns a catalog holding the built-in operations.
func Default() *Catalog {
	c, err := New(Builtin()...)
	if err != nil {
		panic(err)
	}

	return c
}
