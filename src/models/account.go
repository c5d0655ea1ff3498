package models

import (
	"fmt"
	"time"
)

type Account struct {
	ID        int64  `db:"id"`
	AccountID string `db:"account_id"`

	ValidUntil *time.Time `db:"valid_until"`
	CreatedOn  time.Time  `db:"created_on"`
	DeletedOn  *time.Time `db:"deleted_on"`
}

// An account can only receive notifications while its paid/trial period
// lasts. Soft-deleted accounts keep their row for referential history but
// are never valid.
func (a *Account) IsValid() bool {
	return a.ValidationStatus() == ""
}

// Returns an empty string for valid accounts, or a human-readable reason
// why the account is not valid.
func (a *Account) ValidationStatus() string {
	if a.DeletedOn != nil {
		return "account is deleted"
	}
	if a.ValidUntil != nil && a.ValidUntil.Before(time.Now()) {
		return fmt.Sprintf("account expired on %s", a.ValidUntil.Format(time.RFC3339))
	}
	return ""
}
