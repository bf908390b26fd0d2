// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// A fetch flows through ModuleRegistry (resolve and install the module),
// SessionBuilder (validate custom fields, create the backend) and
// Connector (iterate, normalise, classify failures into an envelope).
package services
