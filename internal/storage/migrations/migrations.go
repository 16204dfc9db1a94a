// Package migrations embeds the schema migrations for the SQL backends in
// golang-migrate file naming: NNNNNN_name.up.sql / NNNNNN_name.down.sql.
package migrations

import "embed"

// Postgres holds the PostgreSQL migrations under "postgres".
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds the SQLite migrations under "sqlite".
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Directory names inside the embedded filesystems.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
