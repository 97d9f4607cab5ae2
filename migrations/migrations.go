// Package migrations embeds the SQLite schema.
package migrations

import "embed"

// FS holds the ordered *.up.sql scripts.
//
//go:embed *.up.sql
var FS embed.FS
