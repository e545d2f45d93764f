// Package migrations embeds the journal schema so the plugin binary carries
// it without SQL files on disk.
package migrations

import "embed"

// FS holds every *.sql migration at its root; pass it to
// database.DB.Migrate.
//
//go:embed *.sql
var FS embed.FS
