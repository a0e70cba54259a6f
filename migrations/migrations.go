// Package migrations embeds the SQL schema migrations for the encounter history archive.
package migrations

import "embed"

// FS holds every *.sql migration in golang-migrate naming.
//
//go:embed *.sql
var FS embed.FS
