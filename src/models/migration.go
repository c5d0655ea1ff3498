package models

import "time"

// A row in the migrations ledger. One row per applied migration.
type AppliedMigration struct {
	Version   int       `db:"version"`
	Name      string    `db:"name"`
	AppliedOn time.Time `db:"applied_on"`
	Checksum  string    `db:"checksum"`
}
