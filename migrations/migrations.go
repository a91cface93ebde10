// Package migrations bundles the schema migrations at compile time so the
// binary deploys without external SQL files.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
