package assignmentmigrations

import (
	"context"
	"fmt"

	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating assignments table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*assignmentdb.Assignment)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("create assignments: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE assignments
				ADD CONSTRAINT chk_assignments_status CHECK (status IN ('pending', 'completed'));
			`); err != nil {
				return fmt.Errorf("add assignments checks: %w", err)
			}

			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_assignments_team ON assignments (team_number)`,
				`CREATE INDEX IF NOT EXISTS idx_assignments_pending_due
					ON assignments (due_date) WHERE status = 'pending' AND due_date IS NOT NULL`,
			}
			for _, stmt := range indexes {
				if _, err := tx.NewRaw(stmt).Exec(ctx); err != nil {
					return fmt.Errorf("create assignments index: %w", err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping assignments table...")

		_, err := db.NewDropTable().
			Model((*assignmentdb.Assignment)(nil)).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("drop assignments: %w", err)
		}
		return nil
	})
}
