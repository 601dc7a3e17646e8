package migrations

import "embed"

// FS contains embedded SQLite migrations for the event store backend.
//
//go:embed *.sql
var FS embed.FS
