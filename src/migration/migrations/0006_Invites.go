package migrations

import (
	"context"

	"github.com/chanwatch/chanwatch/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(Invites{})
}

type Invites struct{}

func (m Invites) Version() types.MigrationVersion {
	return types.MigrationVersion(6)
}

func (m Invites) Name() string {
	return "Invites"
}

func (m Invites) Description() string {
	return "Add invite codes for account creation"
}

func (m Invites) SQL() string {
	return `
		CREATE TABLE invites (
			id BIGSERIAL NOT NULL PRIMARY KEY,
			invite_id TEXT NOT NULL UNIQUE,
			created_on TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			accepted_on TIMESTAMP WITH TIME ZONE,
			expires_on TIMESTAMP WITH TIME ZONE NOT NULL
		);
	`
}

func (m Invites) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `DROP TABLE invites;`)
	return err
}
