// Package migrations embeds the sqlite schema migrations so they compile
// into the binary and can be applied without shipping loose SQL files.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
