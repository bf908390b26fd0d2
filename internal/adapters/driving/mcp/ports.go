package mcp

import (
	"github.com/custodia-labs/finconnect/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Connector fetches accounts and transactions.
	Connector driving.Connector

	// Modules lists the published modules. Optional.
	Modules driving.ModuleService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Connector == nil {
		return ErrMissingConnector
	}
	return nil
}
