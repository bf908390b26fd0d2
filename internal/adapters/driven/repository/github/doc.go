// Package github reads a module repository from a GitHub repository.
//
// The location has the form owner/repo[@ref]. Files are read through the
// contents API, so index.toml and modules/<id>.toml must sit at the root
// of the repository at that ref.
//
// # Authentication
//
// A personal access token is optional. Without one, requests are
// unauthenticated and GitHub allows 60 of them per hour, which is enough
// for an index read and a handful of manifest downloads per invocation.
//
// # Rate Limiting
//
// Requests are throttled proactively with a token bucket and reactively
// from the X-RateLimit-* headers of each response.
package github
