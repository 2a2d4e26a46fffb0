package csapi

import (
	"context"
	"time"
)

// JobsClient queries and drains asynchronous jobs.
type JobsClient interface {
	// Get performs one status query.
	Get(ctx context.Context, jobID string) (*AsyncJob, error)

	// PollUntilComplete queries the job until it succeeds, fails or the
	// configured poll timeout elapses.
	PollUntilComplete(ctx context.Context, jobID string) (*AsyncJob, error)

	// PollWithTimeout is PollUntilComplete with a caller supplied budget.
	PollWithTimeout(ctx context.Context, jobID string, timeout time.Duration) (*AsyncJob, error)
}

// ZonesClient lists zones.
type ZonesClient interface {
	List(ctx context.Context) ([]Zone, error)
}

// TemplatesClient lists templates.
type TemplatesClient interface {
	// List returns templates matching filter ("featured" when empty).
	List(ctx context.Context, filter string) ([]Template, error)
}

// ServiceOfferingsClient lists compute offerings.
type ServiceOfferingsClient interface {
	List(ctx context.Context) ([]ServiceOffering, error)
}

// SystemVMsClient lists system VMs.
type SystemVMsClient interface {
	List(ctx context.Context) ([]SystemVM, error)
}

// VirtualMachinesClient manages user VMs.
type VirtualMachinesClient interface {
	// List returns VMs in state ("all" or empty for every VM).
	List(ctx context.Context, state string) ([]VirtualMachine, error)
	Deploy(ctx context.Context, request *DeployRequest) (*VirtualMachine, error)
	DeployByName(ctx context.Context, vmName, zoneName, templateName, offeringName string) (*VirtualMachine, error)
	DeployAuto(ctx context.Context, vmName string) (*VirtualMachine, error)
	Destroy(ctx context.Context, id string) (*AsyncJob, error)
	DestroyByName(ctx context.Context, name string) (*AsyncJob, error)
}

// Client is the CloudStack API client.
type Client interface {
	Zones() ZonesClient
	Templates() TemplatesClient
	ServiceOfferings() ServiceOfferingsClient
	SystemVMs() SystemVMsClient
	VirtualMachines() VirtualMachinesClient
	Jobs() JobsClient

	// Execute runs a catalog operation by name. Asynchronous operations
	// are polled to completion.
	Execute(ctx context.Context, operation string, params Params) (*Result, error)

	// Close releases resources held by the client.
	Close()
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// DuplicatePolicy decides what a name resolution does when several records
// carry the requested name.
type DuplicatePolicy int

const (
	// DuplicateError fails the resolution with an AmbiguousNameError.
	DuplicateError DuplicatePolicy = iota
	// DuplicateFirstMatch returns the first match in listing order.
	DuplicateFirstMatch
)

// PollPolicy bounds a poll session.
type PollPolicy struct {
	// Interval is the pause between two status queries.
	Interval time.Duration
	// Timeout is the elapsed time after which a pending job is abandoned.
	Timeout time.Duration
}

// Config represents client configuration. It is read-only once passed to a
// constructor.
type Config struct {
	// APIEndpoint is the full API URL (e.g. "http://cloud.example.com:8080/client/api").
	APIEndpoint string
	// APIKey identifies the caller; sent as "apikey" on every call.
	APIKey string
	// SecretKey keys the request signature. It is never sent or logged.
	SecretKey string

	// HTTPTimeout bounds a single HTTP exchange.
	HTTPTimeout time.Duration
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is an optional structured logger.
	Logger Logger

	// Poll configures job polling; zero values fall back to 2s / 60s.
	Poll PollPolicy
	// DuplicatePolicy configures name resolution.
	DuplicatePolicy DuplicatePolicy

	// CatalogFile optionally adds operations from a TOML file.
	CatalogFile string

	// NATSURL enables publication of terminal job outcomes when set.
	NATSURL string
	// NATSSubject is the subject prefix for job outcomes.
	NATSSubject string
}
