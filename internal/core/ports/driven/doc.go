// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Backend: Authenticated handle over one source module
//   - BackendFactory: Creates backends from module manifests
//   - ModuleRepository: Publishes the module index and manifests
//   - ModuleCache: Local store of installed modules
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
