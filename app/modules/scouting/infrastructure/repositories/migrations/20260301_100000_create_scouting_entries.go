package scoutingmigrations

import (
	"context"
	"fmt"

	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating scouting_entries table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*scoutingdb.Entry)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("create scouting_entries: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE scouting_entries
				ADD CONSTRAINT chk_scouting_entries_alliance CHECK (alliance IN ('red', 'blue')),
				ADD CONSTRAINT chk_scouting_entries_team CHECK (team_number > 0),
				ADD CONSTRAINT chk_scouting_entries_match CHECK (match_number > 0);
			`); err != nil {
				return fmt.Errorf("add scouting_entries checks: %w", err)
			}

			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS uq_scouting_entries_org
					ON scouting_entries (event_code, match_number, team_number, scouter_organization)`,
				`CREATE INDEX IF NOT EXISTS idx_scouting_entries_alliance
					ON scouting_entries (event_code, match_number, alliance)`,
				`CREATE INDEX IF NOT EXISTS idx_scouting_entries_team
					ON scouting_entries (team_number, event_code, match_number DESC)`,
			}
			for _, stmt := range indexes {
				if _, err := tx.NewRaw(stmt).Exec(ctx); err != nil {
					return fmt.Errorf("create scouting_entries index: %w", err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping scouting_entries table...")

		_, err := db.NewDropTable().
			Model((*scoutingdb.Entry)(nil)).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("drop scouting_entries: %w", err)
		}
		return nil
	})
}
