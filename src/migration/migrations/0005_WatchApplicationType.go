package migrations

import (
	"context"

	"github.com/chanwatch/chanwatch/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(WatchApplicationType{})
}

type WatchApplicationType struct{}

func (m WatchApplicationType) Version() types.MigrationVersion {
	return types.MigrationVersion(5)
}

func (m WatchApplicationType) Name() string {
	return "WatchApplicationType"
}

func (m WatchApplicationType) Description() string {
	return "Record which application flavor placed each watch"
}

func (m WatchApplicationType) SQL() string {
	return `
		ALTER TABLE post_watches
			ADD COLUMN application_type INT NOT NULL DEFAULT -1;

		ALTER TABLE post_watches
			DROP CONSTRAINT post_watches_watch_unique;
		ALTER TABLE post_watches
			ADD CONSTRAINT post_watches_watch_unique
				UNIQUE (owner_account_id, owner_post_descriptor_id, application_type);
	`
}

func (m WatchApplicationType) Down(ctx context.Context, tx pgx.Tx) error {
	// Collapsing back to one watch per account and post can collide.
	// Keep the oldest row for each pair.
	_, err := tx.Exec(ctx, `
		DELETE FROM post_watches
		WHERE id NOT IN (
			SELECT MIN(id)
			FROM post_watches
			GROUP BY owner_account_id, owner_post_descriptor_id
		);

		ALTER TABLE post_watches
			DROP CONSTRAINT post_watches_watch_unique;
		ALTER TABLE post_watches
			ADD CONSTRAINT post_watches_watch_unique
				UNIQUE (owner_account_id, owner_post_descriptor_id);

		ALTER TABLE post_watches DROP COLUMN application_type;
	`)
	return err
}
