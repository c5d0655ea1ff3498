package models

import "time"

// A row in the logs table. Append-only; retention is handled externally.
type LogLine struct {
	ID int64 `db:"id"`

	LogTime  time.Time `db:"log_time"`
	LogLevel string    `db:"log_level"`
	Target   string    `db:"target"`
	Message  string    `db:"message"`
}
