// Package mcp exposes the connector as a Model Context Protocol server, so
// that agents can list modules and fetch accounts or transactions.
package mcp

import "errors"

// ErrMissingConnector is returned when the connector is not provided.
var ErrMissingConnector = errors.New("mcp: connector is required")
