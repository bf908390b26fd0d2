// Package sqlite provides the on-disk module cache.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database file per data directory records every
// installed module together with its manifest.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files.
//
// # Data Location
//
// By default, the database is stored at ~/.finconnect/data/modules.db
//
// # Sharing
//
// The data directory is shared by every invocation pointing at it. SQLite
// in WAL mode serialises writers; Reset is not coordinated with other
// processes.
package sqlite
