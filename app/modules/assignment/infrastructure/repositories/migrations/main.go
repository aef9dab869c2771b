package assignmentmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the assignment module's schema migrations.
var Migrations = migrate.NewMigrations()
