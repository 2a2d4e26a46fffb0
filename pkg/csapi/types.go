package csapi

import (
	"encoding/json"
	"strings"
)

// Params is a set of request parameters keyed by name, case preserved.
type Params map[string]string

// JobStatus is the state of an asynchronous job as reported by the API.
type JobStatus int

const (
	// JobStatusPending is a job still running.
	JobStatusPending JobStatus = 0
	// JobStatusSuccess is a job completed with a success code.
	JobStatusSuccess JobStatus = 1
	// JobStatusFailed is a job completed with a failure code.
	JobStatusFailed JobStatus = 2
)

// String returns the upper-case state name.
func (s JobStatus) String() string {
	switch s {
	case JobStatusPending:
		return "PENDING"
	case JobStatusSuccess:
		return "SUCCESS"
	case JobStatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is a status the API defines.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s.Terminal()
}

// Terminal reports whether the job has finished.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSuccess || s == JobStatusFailed
}

// AsyncJob is the observed state of a server-side job.
type AsyncJob struct {
	JobID      string          `json:"jobid"                   yaml:"jobid"`
	Status     JobStatus       `json:"jobstatus"               yaml:"jobstatus"`
	ResultCode int             `json:"jobresultcode"           yaml:"jobresultcode"`
	ResultType string          `json:"jobresulttype,omitempty" yaml:"jobresulttype,omitempty"`
	Command    string          `json:"cmd,omitempty"           yaml:"cmd,omitempty"`
	Created    string          `json:"created,omitempty"       yaml:"created,omitempty"`
	Result     json.RawMessage `json:"jobresult,omitempty"     yaml:"-"`

	// Raw is the full queryAsyncJobResult response body.
	Raw json.RawMessage `json:"-" yaml:"-"`
}

// ErrorText returns the error text of a failed job result, if any.
func (j *AsyncJob) ErrorText() string {
	if len(j.Result) == 0 {
		return ""
	}

	var failure APIError
	if json.Unmarshal(j.Result, &failure) != nil {
		return ""
	}

	return failure.Text
}

// ResourceRecord is one untyped entry of a listing.
type ResourceRecord map[string]any

// String returns the string value of field, if present.
func (r ResourceRecord) String(field string) (string, bool) {
	value, ok := r[field].(string)

	return value, ok
}

// ID returns the record identifier.
func (r ResourceRecord) ID() string {
	id, _ := r.String("id")

	return id
}

// Zone represents an availability zone.
type Zone struct {
	ID              string `json:"id"                        yaml:"id"`
	Name            string `json:"name"                      yaml:"name"`
	Description     string `json:"description,omitempty"     yaml:"description,omitempty"`
	AllocationState string `json:"allocationstate,omitempty" yaml:"allocationstate,omitempty"`
	NetworkType     string `json:"networktype,omitempty"     yaml:"networktype,omitempty"`
}

// Template represents a VM template.
type Template struct {
	ID          string `json:"id"                    yaml:"id"`
	Name        string `json:"name"                  yaml:"name"`
	DisplayText string `json:"displaytext,omitempty" yaml:"displaytext,omitempty"`
	OSTypeName  string `json:"ostypename,omitempty"  yaml:"ostypename,omitempty"`
	ZoneName    string `json:"zonename,omitempty"    yaml:"zonename,omitempty"`
	IsReady     bool   `json:"isready"               yaml:"isready"`
}

// ServiceOffering represents a compute offering.
type ServiceOffering struct {
	ID          string `json:"id"                    yaml:"id"`
	Name        string `json:"name"                  yaml:"name"`
	DisplayText string `json:"displaytext,omitempty" yaml:"displaytext,omitempty"`
	CPUNumber   int    `json:"cpunumber,omitempty"   yaml:"cpunumber,omitempty"`
	CPUSpeed    int    `json:"cpuspeed,omitempty"    yaml:"cpuspeed,omitempty"`
	Memory      int    `json:"memory,omitempty"      yaml:"memory,omitempty"`
}

// NIC is a network interface of a virtual machine.
type NIC struct {
	ID          string `json:"id"                    yaml:"id"`
	IPAddress   string `json:"ipaddress,omitempty"   yaml:"ipaddress,omitempty"`
	NetworkName string `json:"networkname,omitempty" yaml:"networkname,omitempty"`
	IsDefault   bool   `json:"isdefault"             yaml:"isdefault"`
}

// VirtualMachine represents a user VM.
type VirtualMachine struct {
	ID                  string `json:"id"                            yaml:"id"`
	Name                string `json:"name"                          yaml:"name"`
	DisplayName         string `json:"displayname,omitempty"         yaml:"displayname,omitempty"`
	State               string `json:"state"                         yaml:"state"`
	ZoneID              string `json:"zoneid,omitempty"              yaml:"zoneid,omitempty"`
	ZoneName            string `json:"zonename,omitempty"            yaml:"zonename,omitempty"`
	TemplateID          string `json:"templateid,omitempty"          yaml:"templateid,omitempty"`
	TemplateName        string `json:"templatename,omitempty"        yaml:"templatename,omitempty"`
	ServiceOfferingID   string `json:"serviceofferingid,omitempty"   yaml:"serviceofferingid,omitempty"`
	ServiceOfferingName string `json:"serviceofferingname,omitempty" yaml:"serviceofferingname,omitempty"`
	Created             string `json:"created,omitempty"             yaml:"created,omitempty"`
	NICs                []NIC  `json:"nic,omitempty"                 yaml:"nic,omitempty"`
}

// IPAddress returns the address of the first NIC, or "" when the VM has none.
func (vm *VirtualMachine) IPAddress() string {
	if len(vm.NICs) == 0 {
		return ""
	}

	return vm.NICs[0].IPAddress
}

// HasState reports whether the VM is in state, ignoring case. "all" matches
// every VM.
func (vm *VirtualMachine) HasState(state string) bool {
	return state == "" || strings.EqualFold(state, "all") || strings.EqualFold(vm.State, state)
}

// SystemVM represents a system VM (console proxy, secondary storage VM).
type SystemVM struct {
	ID           string `json:"id"                     yaml:"id"`
	Name         string `json:"name"                   yaml:"name"`
	State        string `json:"state"                  yaml:"state"`
	SystemVMType string `json:"systemvmtype,omitempty" yaml:"systemvmtype,omitempty"`
	IPAddress    string `json:"ipaddress,omitempty"    yaml:"ipaddress,omitempty"`
	PublicIP     string `json:"publicip,omitempty"     yaml:"publicip,omitempty"`
	PrivateIP    string `json:"privateip,omitempty"    yaml:"privateip,omitempty"`
	ZoneName     string `json:"zonename,omitempty"     yaml:"zonename,omitempty"`
}

// DeployRequest holds the identifiers needed to create a VM.
type DeployRequest struct {
	ZoneID            string
	TemplateID        string
	ServiceOfferingID string
	Name              string
	DisplayName       string
}

// Params returns the request parameters of the deployment.
func (r *DeployRequest) Params() Params {
	displayName := r.DisplayName
	if displayName == "" {
		displayName = r.Name
	}

	return Params{
		"zoneid":            r.ZoneID,
		"templateid":        r.TemplateID,
		"serviceofferingid": r.ServiceOfferingID,
		"name":              r.Name,
		"displayname":       displayName,
	}
}

// Result is the outcome of a catalog operation.
type Result struct {
	Operation string `json:"operation" yaml:"operation"`
	Command   string `json:"command"   yaml:"command"`

	// Body is the response envelope, or for asynchronous operations the
	// job result (narrowed to the result key when one is defined).
	Body json.RawMessage `json:"body" yaml:"-"`

	// Job is set for asynchronous operations.
	Job *AsyncJob `json:"job,omitempty" yaml:"job,omitempty"`
}
