package csapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrorKind tags the terminal failure of an operation.
type ErrorKind int

const (
	// KindUnknown is reported for errors that carry no kind.
	KindUnknown ErrorKind = iota
	// KindTransport is a non-success HTTP status or a network failure.
	KindTransport
	// KindAsyncJobFailure is a job that reached the FAILED state.
	KindAsyncJobFailure
	// KindPollTimeout is a job still pending when the poll budget ran out.
	KindPollTimeout
	// KindResourceNotFound is a name that matched no record.
	KindResourceNotFound
	// KindAmbiguousName is a name that matched more than one record.
	KindAmbiguousName
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "TransportError"
	case KindAsyncJobFailure:
		return "AsyncJobFailure"
	case KindPollTimeout:
		return "PollTimeout"
	case KindResourceNotFound:
		return "ResourceNotFound"
	case KindAmbiguousName:
		return "AmbiguousName"
	default:
		return "Unknown"
	}
}

// Common CloudStack error codes.
const (
	ErrorCodeUnauthorized      = 401
	ErrorCodeMethodNotAllowed  = 405
	ErrorCodeParamError        = 431
	ErrorCodeInternalError     = 530
	ErrorCodeResourceUnavail   = 533
	ErrorCodeResourceAllocFail = 534
)

// APIError represents an error reported by the API inside a response envelope.
type APIError struct {
	Code   int    `json:"errorcode"   yaml:"errorcode"`
	CSCode int    `json:"cserrorcode" yaml:"cserrorcode"`
	Text   string `json:"errortext"   yaml:"errortext"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Text, e.Code)
}

// TransportError is a failed HTTP exchange.
type TransportError struct {
	Command    string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: HTTP %d: %v", e.Command, e.StatusCode, e.Err)
		}

		return fmt.Sprintf("%s: HTTP %d", e.Command, e.StatusCode)
	}

	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Kind implements KindedError.
func (e *TransportError) Kind() ErrorKind { return KindTransport }

// AsyncJobFailure is a job that completed with a failure code. Raw keeps
// the full status response for diagnosis.
type AsyncJobFailure struct {
	JobID      string
	ResultCode int
	ErrorText  string
	Raw        json.RawMessage
}

func (e *AsyncJobFailure) Error() string {
	if e.ErrorText != "" {
		return fmt.Sprintf("job %s failed: %s (code: %d)", e.JobID, e.ErrorText, e.ResultCode)
	}

	return fmt.Sprintf("job %s failed: %s", e.JobID, string(e.Raw))
}

// Kind implements KindedError.
func (e *AsyncJobFailure) Kind() ErrorKind { return KindAsyncJobFailure }

// PollTimeoutError is a job that stayed pending past the poll budget.
type PollTimeoutError struct {
	JobID   string
	Timeout time.Duration
	Elapsed time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("job %s did not complete within %s", e.JobID, e.Timeout)
}

// Kind implements KindedError.
func (e *PollTimeoutError) Kind() ErrorKind { return KindPollTimeout }

// ResourceNotFoundError is a name that matched no record of a listing.
type ResourceNotFoundError struct {
	Resource string
	Name     string
}

// NewResourceNotFound builds a ResourceNotFoundError for a resource type.
func NewResourceNotFound(resource, name string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Resource: resource, Name: name}
}

func (e *ResourceNotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("no %s available", e.Resource)
	}

	if e.Resource == "" {
		return e.Name + " not found"
	}

	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

// Kind implements KindedError.
func (e *ResourceNotFoundError) Kind() ErrorKind { return KindResourceNotFound }

// AmbiguousNameError is a name that matched several records.
type AmbiguousNameError struct {
	Name string
	IDs  []string
}

func (e *AmbiguousNameError) Error() string {
	return fmt.Sprintf("name %q matches %d resources: %v", e.Name, len(e.IDs), e.IDs)
}

// Kind implements KindedError.
func (e *AmbiguousNameError) Kind() ErrorKind { return KindAmbiguousName }

// KindedError is implemented by every terminal error of the client.
type KindedError interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first KindedError in the chain.
func KindOf(err error) ErrorKind {
	var kinded KindedError
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}

	return KindUnknown
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool { return KindOf(err) == KindTransport }

// IsAsyncJobFailure reports whether err is an AsyncJobFailure.
func IsAsyncJobFailure(err error) bool { return KindOf(err) == KindAsyncJobFailure }

// IsPollTimeout reports whether err is a PollTimeoutError.
func IsPollTimeout(err error) bool { return KindOf(err) == KindPollTimeout }

// IsResourceNotFound reports whether err is a ResourceNotFoundError.
func IsResourceNotFound(err error) bool { return KindOf(err) == KindResourceNotFound }

// OperationError is the single user-facing failure of a high level operation.
type OperationError struct {
	Op  string
	Err error
}

// Fail wraps err as the failure of op. A nil err yields nil.
func Fail(op string, err error) error {
	if err == nil {
		return nil
	}

	return &OperationError{Op: op, Err: err}
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// ParseAPIError extracts the error fields of a response envelope. The
// envelope name is not known for failed calls, so the first object value
// carrying an error code wins.
func ParseAPIError(data []byte) (*APIError, error) {
	var envelope map[string]json.RawMessage

	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal error response: %w", err)
	}

	for _, raw := range envelope {
		var apiErr APIError
		if json.Unmarshal(raw, &apiErr) == nil && (apiErr.Code != 0 || apiErr.Text != "") {
			return &apiErr, nil
		}
	}

	return nil, ErrNoAPIError
}

// Common static errors that can be wrapped with context.
var (
	ErrNoAPIError = errors.New("no error fields in response")
)
