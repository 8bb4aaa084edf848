package migrations

import "embed"

// FS holds the activity store schema.
//
//go:embed *.sql
var FS embed.FS
