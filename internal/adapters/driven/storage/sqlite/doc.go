// Package sqlite provides a SQLite-backed manifest catalog.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It is an alternative to the per-document manifest.json
// files, selected with manifest.backend = "sqlite".
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory (NNN_name.up.sql / NNN_name.down.sql).
//
// # Data Location
//
// The database is stored at <data_dir>/catalog.db.
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode.
package sqlite
