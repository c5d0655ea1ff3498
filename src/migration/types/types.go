package types

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type Migration interface {
	Version() MigrationVersion
	Name() string
	Description() string

	// The DDL/DML applied by this migration. The runner executes it inside
	// a transaction and records its checksum in the ledger, so the text
	// must never change once the migration has shipped.
	SQL() string

	Down(ctx context.Context, tx pgx.Tx) error
}

// Monotonically increasing migration version. Versions are assigned by
// hand and must be contiguous starting at 1.
type MigrationVersion int

func (v MigrationVersion) String() string {
	return fmt.Sprintf("%04d", int(v))
}
