package migrations

import (
	"context"

	"github.com/chanwatch/chanwatch/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(NormalizePostIdentity{})
}

type NormalizePostIdentity struct{}

func (m NormalizePostIdentity) Version() types.MigrationVersion {
	return types.MigrationVersion(2)
}

func (m NormalizePostIdentity) Name() string {
	return "NormalizePostIdentity"
}

func (m NormalizePostIdentity) Description() string {
	return "Split post identity into threads and post descriptors"
}

func (m NormalizePostIdentity) SQL() string {
	return `
		DROP TABLE watches;
		DROP TABLE posts;

		CREATE TABLE threads (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			site_name TEXT NOT NULL,
			board_code TEXT NOT NULL,
			thread_no BIGINT NOT NULL,
			last_processed_post_no BIGINT NOT NULL DEFAULT 0,
			last_processed_post_sub_no BIGINT NOT NULL DEFAULT 0,
			is_dead BOOLEAN NOT NULL DEFAULT FALSE,
			last_modified TIMESTAMP WITH TIME ZONE,
			created_on TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			deleted_on TIMESTAMP WITH TIME ZONE,
			CONSTRAINT threads_identity_unique UNIQUE (site_name, board_code, thread_no)
		);

		CREATE TABLE post_descriptors (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			owner_thread_id BIGINT NOT NULL
				REFERENCES threads (id) ON UPDATE CASCADE ON DELETE CASCADE,
			post_no BIGINT NOT NULL,
			post_sub_no BIGINT NOT NULL DEFAULT 0,
			CONSTRAINT post_descriptors_identity_unique UNIQUE (owner_thread_id, post_no, post_sub_no)
		);

		CREATE TABLE posts (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			owner_post_descriptor_id BIGINT NOT NULL UNIQUE
				REFERENCES post_descriptors (id) ON UPDATE CASCADE ON DELETE CASCADE,
			is_dead BOOLEAN NOT NULL DEFAULT FALSE,
			created_on TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			deleted_on TIMESTAMP WITH TIME ZONE
		);

		CREATE TABLE post_replies (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			owner_account_id BIGINT NOT NULL
				REFERENCES accounts (id) ON UPDATE CASCADE ON DELETE CASCADE,
			owner_post_descriptor_id BIGINT NOT NULL
				REFERENCES post_descriptors (id) ON UPDATE CASCADE ON DELETE CASCADE,
			reply_to_post_descriptor_id BIGINT NOT NULL
				REFERENCES post_descriptors (id) ON UPDATE CASCADE ON DELETE CASCADE,
			notification_sent_on TIMESTAMP WITH TIME ZONE,
			created_on TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			deleted_on TIMESTAMP WITH TIME ZONE,
			CONSTRAINT post_replies_reply_unique UNIQUE (owner_account_id, owner_post_descriptor_id, reply_to_post_descriptor_id)
		);

		CREATE TABLE post_watches (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			owner_account_id BIGINT NOT NULL
				REFERENCES accounts (id) ON UPDATE CASCADE ON DELETE CASCADE,
			owner_post_descriptor_id BIGINT NOT NULL
				REFERENCES post_descriptors (id) ON UPDATE CASCADE ON DELETE CASCADE,
			CONSTRAINT post_watches_watch_unique UNIQUE (owner_account_id, owner_post_descriptor_id)
		);
	`
}

func (m NormalizePostIdentity) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE post_watches;
		DROP TABLE post_replies;
		DROP TABLE posts;
		DROP TABLE post_descriptors;
		DROP TABLE threads;

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
	`)
	return err
}
