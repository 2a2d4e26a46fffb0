package constants

import "errors"

// Configuration errors.
var (
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrAPIKeyRequired      = errors.New("API key is required")
	ErrSecretKeyRequired   = errors.New("secret key is required")
	ErrConfigRequired      = errors.New("config is required")
	ErrInvalidEndpoint     = errors.New("invalid API endpoint")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
)

// Response errors.
var (
	ErrMissingEnvelope = errors.New("response envelope not found")
	ErrMissingJobID    = errors.New("response carries no job id")
	ErrMissingResult   = errors.New("job result carries no result key")
	ErrInvalidResponse = errors.New("invalid API response")
)

// Catalog errors.
var (
	ErrUnknownOperation    = errors.New("unknown operation")
	ErrMissingParameter    = errors.New("missing required parameter")
	ErrOperationInvalid    = errors.New("invalid operation definition")
	ErrDuplicateOperation  = errors.New("duplicate operation")
	ErrInvalidParamFormat  = errors.New("invalid parameter format, expected key=value")
	ErrInvalidOutputFormat = errors.New("invalid output format")
)
