// Package migrations embeds the SQL migration files so they ship inside the
// binary and ApplyMigrations never depends on the working directory.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
