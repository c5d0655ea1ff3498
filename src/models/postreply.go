package models

import "time"

// A directed edge in the reply graph: the post at OwnerPostDescriptorID
// quoted the post at ReplyToPostDescriptorID, and the account should be
// notified about it.
type PostReply struct {
	ID int64 `db:"id"`

	OwnerAccountID          int64 `db:"owner_account_id"`
	OwnerPostDescriptorID   int64 `db:"owner_post_descriptor_id"`
	ReplyToPostDescriptorID int64 `db:"reply_to_post_descriptor_id"`

	NotificationDeliveryAttempt int        `db:"notification_delivery_attempt"`
	NotificationDeliveredOn     *time.Time `db:"notification_delivered_on"`

	CreatedOn time.Time  `db:"created_on"`
	DeletedOn *time.Time `db:"deleted_on"`
}

type PostWatch struct {
	ID int64 `db:"id"`

	OwnerAccountID        int64 `db:"owner_account_id"`
	OwnerPostDescriptorID int64 `db:"owner_post_descriptor_id"`

	ApplicationType ApplicationType `db:"application_type"`
}
