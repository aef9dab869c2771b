package notificationmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the notification module's schema migrations.
var Migrations = migrate.NewMigrations()
