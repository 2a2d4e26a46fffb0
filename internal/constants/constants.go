package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single API exchange.
	DefaultHTTPTimeout = 30 * time.Second
)

// Job polling.
const (
	// DefaultPollInterval is the pause between two job status queries.
	DefaultPollInterval = 2 * time.Second

	// DefaultJobPollTimeout is the default time budget of a poll session.
	DefaultJobPollTimeout = 60 * time.Second
)

// Request fields present on every call.
const (
	ParamCommand   = "command"
	ParamAPIKey    = "apikey"
	ParamResponse  = "response"
	ParamSignature = "signature"
	ParamJobID     = "jobid"

	// ResponseFormatJSON is the only response format the client speaks.
	ResponseFormatJSON = "json"

	// EnvelopeSuffix is appended to the lower-cased command name to find
	// the response envelope.
	EnvelopeSuffix = "response"
)

// Command names used by the built-in catalog.
const (
	CommandQueryAsyncJobResult   = "queryAsyncJobResult"
	CommandListZones             = "listZones"
	CommandListTemplates         = "listTemplates"
	CommandListServiceOfferings  = "listServiceOfferings"
	CommandListVirtualMachines   = "listVirtualMachines"
	CommandListSystemVMs         = "listSystemVms"
	CommandDeployVirtualMachine  = "deployVirtualMachine"
	CommandDestroyVirtualMachine = "destroyVirtualMachine"
)

// Listing keys inside response envelopes.
const (
	KeyZone            = "zone"
	KeyTemplate        = "template"
	KeyServiceOffering = "serviceoffering"
	KeyVirtualMachine  = "virtualmachine"
	KeySystemVM        = "systemvm"
)

// Record fields.
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldJobStatus = "jobstatus"
)

// Defaults used by listing operations.
const (
	// DefaultTemplateFilter is the template filter used when none is given.
	DefaultTemplateFilter = "featured"

	// StateFilterAll disables state filtering on VM listings.
	StateFilterAll = "all"
)

// HTTP headers.
const (
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"
	HeaderRequestID   = "X-Request-Id"

	// ContentTypeForm is the content type of every API call.
	ContentTypeForm = "application/x-www-form-urlencoded"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "csapi-client/1.0"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Job event subjects.
const (
	// DefaultEventSubject is the NATS subject prefix for job outcomes.
	DefaultEventSubject = "csapi.jobs"
)

// Validation and limits.
const (
	// KeyValueSplitParts is the number of parts when splitting key=value strings.
	KeyValueSplitParts = 2

	// MaxErrorBodyLength bounds the response body kept on transport errors.
	MaxErrorBodyLength = 4096
)
