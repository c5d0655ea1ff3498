package migrations

import (
	"context"

	"github.com/chanwatch/chanwatch/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(LogIndices{})
}

type LogIndices struct{}

func (m LogIndices) Version() types.MigrationVersion {
	return types.MigrationVersion(7)
}

func (m LogIndices) Name() string {
	return "LogIndices"
}

func (m LogIndices) Description() string {
	return "Index logs for time and level queries"
}

func (m LogIndices) SQL() string {
	return `
		CREATE INDEX logs_log_time_idx ON logs (log_time);
		CREATE INDEX logs_log_level_idx ON logs (log_level);
	`
}

func (m LogIndices) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP INDEX logs_log_time_idx;
		DROP INDEX logs_log_level_idx;
	`)
	return err
}
