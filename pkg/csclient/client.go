// Package csclient provides the main entry point for creating CloudStack API clients
package csclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/csapi/internal/client"
	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// DefaultAPIPath is appended to endpoints given without a path.
const DefaultAPIPath = "/client/api"

// New creates a new CloudStack API client. config is not modified.
func New(ctx context.Context, config *csapi.Config) (csapi.Client, error) {
	if config == nil {
		return nil, constants.ErrConfigRequired
	}

	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	endpoint, err := NormalizeEndpoint(config.APIEndpoint)
	if err != nil {
		return nil, err
	}

	normalized := *config
	normalized.APIEndpoint = endpoint

	// Use the internal client implementation
	cli, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}

// NewWithKeys creates a client from an endpoint and a key pair.
func NewWithKeys(ctx context.Context, endpoint, apiKey, secretKey string) (csapi.Client, error) {
	return New(ctx, &csapi.Config{
		APIEndpoint: endpoint,
		APIKey:      apiKey,
		SecretKey:   secretKey,
	})
}

// NormalizeEndpoint defaults the scheme to https and the path to
// /client/api, and trims trailing slashes from the path.
func NormalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", constants.ErrAPIEndpointRequired
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	// A host with an empty port, such as "http:" from "http:/", is rejected.
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Hostname() == "" || strings.HasSuffix(parsed.Host, ":") {
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidEndpoint, endpoint)
	}

	if parsed.RawQuery != "" {
		return "", fmt.Errorf("%w: query strings are not allowed: %s", constants.ErrInvalidEndpoint, endpoint)
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = ""

	if parsed.Path == "" {
		parsed.Path = DefaultAPIPath
	}

	return parsed.String(), nil
}
