package scoutingmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the scouting module's schema migrations.
var Migrations = migrate.NewMigrations()
