// Package migrations embeds the goose SQL migrations for the capturer
// database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
