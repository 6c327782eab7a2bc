// Package migrations embeds the schema for every supported SQL dialect.
// Each dialect lives in its own directory named after the DB_DRIVER value.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
