package watchdata

import (
	"context"

	"github.com/chanwatch/chanwatch/src/db"
	"github.com/chanwatch/chanwatch/src/models"
	"github.com/chanwatch/chanwatch/src/oops"
)

/*
Returns the thread row for a descriptor, creating it if this is the first
time the thread has been seen. The upsert always returns the row, so
concurrent resolvers for the same thread all get the same id.
*/
func ResolveThread(ctx context.Context, dbConn db.ConnOrTx, desc models.ThreadDescriptor) (*models.Thread, error) {
	thread, err := db.QueryOne[models.Thread](ctx, dbConn,
		`
		INSERT INTO threads (site_name, board_code, thread_no)
		VALUES ($1, $2, $3)
		ON CONFLICT (site_name, board_code, thread_no)
			DO UPDATE SET thread_no = threads.thread_no
		RETURNING $columns
		`,
		desc.SiteName, desc.BoardCode, desc.ThreadNo,
	)
	if err != nil {
		return nil, oops.New(err, "failed to resolve thread %s", desc)
	}
	return thread, nil
}

// Same deal as ResolveThread, one level down. Resolves the post's thread
// first, then upserts the descriptor within it.
func ResolvePostDescriptor(ctx context.Context, dbConn db.ConnOrTx, loc models.PostLocator) (*models.PostDescriptor, error) {
	thread, err := ResolveThread(ctx, dbConn, loc.Thread)
	if err != nil {
		return nil, err
	}

	descriptor, err := db.QueryOne[models.PostDescriptor](ctx, dbConn,
		`
		INSERT INTO post_descriptors (owner_thread_id, post_no, post_sub_no)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_thread_id, post_no, post_sub_no)
			DO UPDATE SET post_no = post_descriptors.post_no
		RETURNING $columns
		`,
		thread.ID, loc.PostNo, loc.PostSubNo,
	)
	if err != nil {
		return nil, oops.New(err, "failed to resolve post descriptor %s", loc)
	}
	return descriptor, nil
}

func FetchThread(ctx context.Context, dbConn db.ConnOrTx, desc models.ThreadDescriptor) (*models.Thread, error) {
	thread, err := db.QueryOne[models.Thread](ctx, dbConn,
		`
		SELECT $columns
		FROM threads
		WHERE site_name = $1 AND board_code = $2 AND thread_no = $3
		`,
		desc.SiteName, desc.BoardCode, desc.ThreadNo,
	)
	if err != nil {
		if err == db.NotFound {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch thread %s", desc)
	}
	return thread, nil
}

/*
Moves the thread's processing watermark forward to cursor. The watermark
only ever advances; a cursor at or behind the one on the row we fetched
returns false without a round trip. The comparison is repeated inside the
UPDATE, so concurrent processors cannot move the watermark backwards no
matter how they interleave. On success the in-memory thread is updated to
match the row.
*/
func AdvanceWatermark(ctx context.Context, dbConn db.ConnOrTx, thread *models.Thread, cursor models.PostCursor) (bool, error) {
	if !cursor.After(thread.Watermark()) {
		return false, nil
	}

	tag, err := dbConn.Exec(ctx,
		`
		UPDATE threads
		SET
			last_processed_post_no = $2,
			last_processed_post_sub_no = $3,
			last_modified = NOW()
		WHERE
			id = $1
			AND (
				last_processed_post_no < $2
				OR (last_processed_post_no = $2 AND last_processed_post_sub_no < $3)
			)
		`,
		thread.ID, cursor.PostNo, cursor.PostSubNo,
	)
	if err != nil {
		return false, oops.New(err, "failed to advance thread watermark")
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	thread.LastProcessedPostNo = cursor.PostNo
	thread.LastProcessedPostSubNo = cursor.PostSubNo
	return true, nil
}

// A dead thread fell off the site. We keep the row so watches and replies
// stay resolvable, but processors skip it from now on.
func MarkThreadDead(ctx context.Context, dbConn db.ConnOrTx, threadID int64) error {
	_, err := dbConn.Exec(ctx,
		`UPDATE threads SET is_dead = TRUE, last_modified = NOW() WHERE id = $1`,
		threadID,
	)
	if err != nil {
		return oops.New(err, "failed to mark thread dead")
	}
	return nil
}

func TouchThreadModified(ctx context.Context, dbConn db.ConnOrTx, threadID int64) error {
	_, err := dbConn.Exec(ctx,
		`UPDATE threads SET last_modified = NOW() WHERE id = $1`,
		threadID,
	)
	if err != nil {
		return oops.New(err, "failed to touch thread")
	}
	return nil
}

// Live threads that still need processing, oldest first.
func FetchActiveThreads(ctx context.Context, dbConn db.ConnOrTx) ([]*models.Thread, error) {
	threads, err := db.Query[models.Thread](ctx, dbConn,
		`
		SELECT $columns
		FROM threads
		WHERE NOT is_dead AND deleted_on IS NULL
		ORDER BY last_modified ASC NULLS FIRST
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch active threads")
	}
	return threads, nil
}
