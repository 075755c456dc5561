// Package migrations embeds the SQL migration files applied by the
// sqlite store at startup.
package migrations

import "embed"

// FS contains all migration files.
//
//go:embed *.sql
var FS embed.FS
