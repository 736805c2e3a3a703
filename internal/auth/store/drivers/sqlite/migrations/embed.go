// Package migrations holds the sqlite schema, embedded into the binary and
// applied with golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
