package migrations

import (
	"context"

	"github.com/chanwatch/chanwatch/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AccountTokens{})
}

type AccountTokens struct{}

func (m AccountTokens) Version() types.MigrationVersion {
	return types.MigrationVersion(3)
}

func (m AccountTokens) Name() string {
	return "AccountTokens"
}

func (m AccountTokens) Description() string {
	return "Move push tokens out of accounts so one account can hold several"
}

func (m AccountTokens) SQL() string {
	return `
		CREATE TABLE account_tokens (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			owner_account_id BIGINT NOT NULL
				REFERENCES accounts (id) ON UPDATE CASCADE ON DELETE CASCADE,
			token TEXT,
			application_type INT NOT NULL DEFAULT 0,
			token_type INT NOT NULL DEFAULT 0,
			CONSTRAINT account_tokens_token_unique UNIQUE (token, application_type, token_type)
		);

		INSERT INTO account_tokens (owner_account_id, token)
		SELECT id, firebase_token
		FROM accounts
		WHERE firebase_token IS NOT NULL;

		ALTER TABLE accounts DROP COLUMN firebase_token;
	`
}

func (m AccountTokens) Down(ctx context.Context, tx pgx.Tx) error {
	// An account may have grown several tokens by now; the oldest one
	// wins the single column back.
	_, err := tx.Exec(ctx, `
		ALTER TABLE accounts ADD COLUMN firebase_token TEXT;

		UPDATE accounts
		SET firebase_token = (
			SELECT token
			FROM account_tokens
			WHERE account_tokens.owner_account_id = accounts.id
				AND account_tokens.token IS NOT NULL
			ORDER BY account_tokens.id ASC
			LIMIT 1
		);

		DROP TABLE account_tokens;
	`)
	return err
}
