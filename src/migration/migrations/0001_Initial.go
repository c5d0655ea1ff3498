package migrations

import (
	"context"

	"github.com/chanwatch/chanwatch/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(Initial{})
}

type Initial struct{}

func (m Initial) Version() types.MigrationVersion {
	return types.MigrationVersion(1)
}

func (m Initial) Name() string {
	return "Initial"
}

func (m Initial) Description() string {
	return "Create accounts, watched posts, and logs"
}

func (m Initial) SQL() string {
	return `
		CREATE TABLE accounts (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			account_id TEXT NOT NULL UNIQUE,
			firebase_token TEXT,
			valid_until TIMESTAMP WITH TIME ZONE,
			created_on TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			deleted_on TIMESTAMP WITH TIME ZONE
		);

		CREATE TABLE posts (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			site_name TEXT NOT NULL,
			board_code TEXT NOT NULL,
			thread_no BIGINT NOT NULL,
			post_no BIGINT NOT NULL,
			post_sub_no BIGINT NOT NULL DEFAULT 0,
			is_dead BOOLEAN NOT NULL DEFAULT FALSE,
			created_on TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			deleted_on TIMESTAMP WITH TIME ZONE,
			CONSTRAINT posts_identity_unique UNIQUE (site_name, board_code, thread_no, post_no, post_sub_no)
		);

		CREATE TABLE watches (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			owner_account_id BIGINT NOT NULL
				REFERENCES accounts (id) ON UPDATE CASCADE ON DELETE CASCADE,
			owner_post_id BIGINT NOT NULL
				REFERENCES posts (id) ON UPDATE CASCADE ON DELETE CASCADE,
			CONSTRAINT watches_watch_unique UNIQUE (owner_account_id, owner_post_id)
		);

		CREATE TABLE logs (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			log_time TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			log_level TEXT NOT NULL,
			target TEXT NOT NULL,
			message TEXT NOT NULL
		);
	`
}

func (m Initial) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE logs;
		DROP TABLE watches;
		DROP TABLE posts;
		DROP TABLE accounts;
	`)
	return err
}
