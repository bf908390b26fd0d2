// Package domain defines the core business entities for finconnect.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - SourceModule, ModuleManifest: pluggable backends and their payloads
//   - CredentialBundle: per-session credentials
//   - RawAccount, RawTransaction: records as exposed by a backend
//   - Account, Transaction: canonical records returned to callers
//   - ResultEnvelope: values or a classified error
//   - ErrorCodes: the externally supplied error-code table
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library and github.com/shopspring/decimal for money
// values. All other packages depend on domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, shopspring/decimal
//   - Cannot Import: Any internal/ package
package domain
