// Package connectors provides the compiled backend drivers. Each driver
// knows how to talk to one kind of financial source (the deterministic
// demo bank, REST banking APIs, etc.). Module manifests name the driver
// they run on.
//
// Drivers are registered with the Factory at startup.
package connectors
