package migrations

import "embed"

// Files holds the forward-only SQL migrations compiled into the binary.
// New migrations append a higher numeric prefix; applied versions are
// tracked in schema_migrations and never re-run.
//
//go:embed *.sql
var Files embed.FS
