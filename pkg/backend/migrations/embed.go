// Package migrations embeds the schema used by the database service.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
