package notificationmigrations

import (
	"context"
	"fmt"

	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating push_subscriptions table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*notificationdb.Subscription)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("create push_subscriptions: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE push_subscriptions
				ADD CONSTRAINT chk_push_subscriptions_status CHECK (status IN ('pending', 'sent', 'error')),
				ADD CONSTRAINT chk_push_subscriptions_reminder CHECK (reminder_minutes >= 0);
			`); err != nil {
				return fmt.Errorf("add push_subscriptions checks: %w", err)
			}

			// The general row has a NULL assignment_id, so the tuple index folds NULL
			// into the nil UUID to keep it unique too.
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS uq_push_subscriptions_tuple
					ON push_subscriptions (user_id, team_number, (COALESCE(assignment_id, '00000000-0000-0000-0000-000000000000'::uuid)))`,
				`CREATE INDEX IF NOT EXISTS idx_push_subscriptions_due
					ON push_subscriptions (scheduled_time) WHERE sent = false AND status = 'pending'`,
				`CREATE INDEX IF NOT EXISTS idx_push_subscriptions_assignment
					ON push_subscriptions (assignment_id) WHERE assignment_id IS NOT NULL`,
				`CREATE INDEX IF NOT EXISTS idx_push_subscriptions_team_user
					ON push_subscriptions (team_number, user_id, updated_at DESC)`,
			}
			for _, stmt := range indexes {
				if _, err := tx.NewRaw(stmt).Exec(ctx); err != nil {
					return fmt.Errorf("create push_subscriptions index: %w", err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping push_subscriptions table...")

		_, err := db.NewDropTable().
			Model((*notificationdb.Subscription)(nil)).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("drop push_subscriptions: %w", err)
		}
		return nil
	})
}
