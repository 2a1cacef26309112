// Package migrations embeds the SQL schema applied at startup by
// database.RunMigrations.
package migrations

import "embed"

//go:embed *.up.sql
var files embed.FS

// FS returns the embedded migration files.
func FS() embed.FS {
	return files
}
