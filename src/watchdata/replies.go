package watchdata

import (
	"context"

	"github.com/chanwatch/chanwatch/src/db"
	"github.com/chanwatch/chanwatch/src/models"
	"github.com/chanwatch/chanwatch/src/oops"
)

// Delivery gives up on a reply after this many failed attempts. Firebase
// tokens go stale all the time; without a cap a dead token would keep its
// replies in the pending set forever.
const MaxNotificationDeliveryAttempts = 25

/*
Records that the post identified by postDescriptorID replied to every
descriptor in quotedDescriptorIDs, fanned out to the accounts watching
those descriptors. Re-running the fan-out for a post that was already
processed inserts nothing. Returns the number of new reply rows.

Accounts past their expiry never receive new replies.
*/
func FanOutReplies(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postDescriptorID int64,
	quotedDescriptorIDs []int64,
) (int64, error) {
	if len(quotedDescriptorIDs) == 0 {
		return 0, nil
	}

	tag, err := dbConn.Exec(ctx,
		`
		INSERT INTO post_replies (owner_account_id, owner_post_descriptor_id, reply_to_post_descriptor_id)
		SELECT pw.owner_account_id, $1, pw.owner_post_descriptor_id
		FROM
			post_watches AS pw
			JOIN accounts ON accounts.id = pw.owner_account_id
		WHERE
			pw.owner_post_descriptor_id = ANY ($2)
			AND accounts.deleted_on IS NULL
			AND (accounts.valid_until IS NULL OR accounts.valid_until > NOW())
		ON CONFLICT (owner_account_id, owner_post_descriptor_id, reply_to_post_descriptor_id) DO NOTHING
		`,
		postDescriptorID, quotedDescriptorIDs,
	)
	if err != nil {
		return 0, oops.New(err, "failed to fan out replies")
	}
	return tag.RowsAffected(), nil
}

// Records a single reply for a specific account. The fan-out above is the
// normal path; this exists for admin repair work.
func RecordReply(ctx context.Context, dbConn db.ConnOrTx, accountRowID, postDescriptorID, replyToDescriptorID int64) error {
	_, err := dbConn.Exec(ctx,
		`
		INSERT INTO post_replies (owner_account_id, owner_post_descriptor_id, reply_to_post_descriptor_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_account_id, owner_post_descriptor_id, reply_to_post_descriptor_id) DO NOTHING
		`,
		accountRowID, postDescriptorID, replyToDescriptorID,
	)
	if err != nil {
		return oops.New(err, "failed to record reply")
	}
	return nil
}

type PendingNotification struct {
	Reply      models.PostReply      `db:"pr"`
	Token      models.AccountToken   `db:"t"`
	Thread     models.Thread         `db:"th"`
	Descriptor models.PostDescriptor `db:"pd"`
}

// The post that triggered the notification, for building the payload.
func (n *PendingNotification) Locator() models.PostLocator {
	return models.PostLocator{
		Thread:    n.Thread.Descriptor(),
		PostNo:    n.Descriptor.PostNo,
		PostSubNo: n.Descriptor.PostSubNo,
	}
}

/*
Fetches undelivered replies paired with the push tokens to deliver them to.
A reply produces one row per matching token, so one row here is one push.

Tokens match when the watch that produced the reply was placed from the
same application flavor, or when the watch predates flavor tracking and
has no flavor recorded. Replies that exhausted their delivery attempts do
not come back.
*/
func PendingNotifications(ctx context.Context, dbConn db.ConnOrTx, limit int) ([]*PendingNotification, error) {
	pending, err := db.Query[PendingNotification](ctx, dbConn,
		`
		SELECT $columns
		FROM
			post_replies AS pr
			JOIN accounts ON accounts.id = pr.owner_account_id
			JOIN post_watches AS pw ON (
				pw.owner_account_id = pr.owner_account_id
				AND pw.owner_post_descriptor_id = pr.reply_to_post_descriptor_id
			)
			JOIN account_tokens AS t ON (
				t.owner_account_id = pr.owner_account_id
				AND (pw.application_type = $1 OR t.application_type = pw.application_type)
			)
			JOIN post_descriptors AS pd ON pd.id = pr.owner_post_descriptor_id
			JOIN threads AS th ON th.id = pd.owner_thread_id
		WHERE
			pr.notification_delivered_on IS NULL
			AND pr.notification_delivery_attempt < $2
			AND pr.deleted_on IS NULL
			AND t.token IS NOT NULL
			AND accounts.deleted_on IS NULL
			AND (accounts.valid_until IS NULL OR accounts.valid_until > NOW())
		ORDER BY pr.created_on ASC, pr.id ASC
		LIMIT $3
		`,
		models.ApplicationTypeUnknown, MaxNotificationDeliveryAttempts, limit,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch pending notifications")
	}
	return pending, nil
}

// Charges a delivery attempt to each reply. Call this before handing the
// batch to the push service so a crash mid-delivery still counts.
func BumpDeliveryAttempts(ctx context.Context, dbConn db.ConnOrTx, replyIDs []int64) error {
	if len(replyIDs) == 0 {
		return nil
	}
	_, err := dbConn.Exec(ctx,
		`
		UPDATE post_replies
		SET notification_delivery_attempt = notification_delivery_attempt + 1
		WHERE id = ANY ($1)
		`,
		replyIDs,
	)
	if err != nil {
		return oops.New(err, "failed to bump delivery attempts")
	}
	return nil
}

// Marks replies as delivered. Repeat calls keep the first timestamp; the
// returned count says how many rows actually transitioned.
func MarkRepliesDelivered(ctx context.Context, dbConn db.ConnOrTx, replyIDs []int64) (int64, error) {
	if len(replyIDs) == 0 {
		return 0, nil
	}
	tag, err := dbConn.Exec(ctx,
		`
		UPDATE post_replies
		SET notification_delivered_on = NOW()
		WHERE id = ANY ($1) AND notification_delivered_on IS NULL
		`,
		replyIDs,
	)
	if err != nil {
		return 0, oops.New(err, "failed to mark replies delivered")
	}
	return tag.RowsAffected(), nil
}

func FetchAccountReplies(ctx context.Context, dbConn db.ConnOrTx, accountRowID int64) ([]*models.PostReply, error) {
	replies, err := db.Query[models.PostReply](ctx, dbConn,
		`
		SELECT $columns
		FROM post_replies
		WHERE owner_account_id = $1 AND deleted_on IS NULL
		ORDER BY id DESC
		`,
		accountRowID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch account replies")
	}
	return replies, nil
}
