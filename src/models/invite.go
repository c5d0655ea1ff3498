package models

import "time"

type Invite struct {
	ID int64 `db:"id"`

	InviteID string `db:"invite_id"`

	CreatedOn  time.Time  `db:"created_on"`
	AcceptedOn *time.Time `db:"accepted_on"`
	ExpiresOn  time.Time  `db:"expires_on"`
}
