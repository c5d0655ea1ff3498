package models

import "time"

// The normalized identity row of a post. Replies and watches reference
// this instead of duplicating thread context, and it can exist before the
// post's content row has been ingested.
type PostDescriptor struct {
	ID int64 `db:"id"`

	OwnerThreadID int64 `db:"owner_thread_id"`
	PostNo        int64 `db:"post_no"`
	PostSubNo     int64 `db:"post_sub_no"`
}

// Content lifecycle of a post, one-to-one with its descriptor.
type Post struct {
	ID int64 `db:"id"`

	OwnerPostDescriptorID int64 `db:"owner_post_descriptor_id"`

	IsDead    bool       `db:"is_dead"`
	CreatedOn time.Time  `db:"created_on"`
	DeletedOn *time.Time `db:"deleted_on"`
}
