package db

import "embed"

// MigrationFS embeds the SQL migrations from internal/db/migrations. The
// migrate runner (cmd/migrate) reads them through an iofs source, so the
// server binary never needs migration files on disk.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
