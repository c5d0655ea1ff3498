package migrations

import (
	"context"

	"github.com/chanwatch/chanwatch/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(NotificationDeliveryState{})
}

type NotificationDeliveryState struct{}

func (m NotificationDeliveryState) Version() types.MigrationVersion {
	return types.MigrationVersion(4)
}

func (m NotificationDeliveryState) Name() string {
	return "NotificationDeliveryState"
}

func (m NotificationDeliveryState) Description() string {
	return "Track delivery attempts per reply instead of a single sent flag"
}

func (m NotificationDeliveryState) SQL() string {
	return `
		ALTER TABLE post_replies
			ADD COLUMN notification_delivery_attempt INT NOT NULL DEFAULT 0,
			ADD COLUMN notification_delivered_on TIMESTAMP WITH TIME ZONE;

		UPDATE post_replies
		SET notification_delivered_on = NOW()
		WHERE notification_sent_on IS NOT NULL;

		ALTER TABLE post_replies DROP COLUMN notification_sent_on;
	`
}

func (m NotificationDeliveryState) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE post_replies ADD COLUMN notification_sent_on TIMESTAMP WITH TIME ZONE;

		UPDATE post_replies
		SET notification_sent_on = notification_delivered_on;

		ALTER TABLE post_replies
			DROP COLUMN notification_delivery_attempt,
			DROP COLUMN notification_delivered_on;
	`)
	return err
}
