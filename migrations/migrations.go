// Package migrations embeds the SQL schema migrations for each
// supported database backend. Files are applied in filename order by
// the migration runner in internal/core/db.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
