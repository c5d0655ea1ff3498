package watchdata

import (
	"context"

	"github.com/chanwatch/chanwatch/src/db"
	"github.com/chanwatch/chanwatch/src/models"
	"github.com/chanwatch/chanwatch/src/oops"
)

/*
Subscribes an account to replies to a post. The post descriptor is
resolved (and created) as needed. Subscribing twice from the same
application flavor returns the existing watch.
*/
func Subscribe(
	ctx context.Context,
	dbConn db.ConnOrTx,
	accountRowID int64,
	loc models.PostLocator,
	applicationType models.ApplicationType,
) (*models.PostWatch, error) {
	descriptor, err := ResolvePostDescriptor(ctx, dbConn, loc)
	if err != nil {
		return nil, err
	}

	watch, err := db.QueryOne[models.PostWatch](ctx, dbConn,
		`
		INSERT INTO post_watches (owner_account_id, owner_post_descriptor_id, application_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_account_id, owner_post_descriptor_id, application_type)
			DO UPDATE SET application_type = post_watches.application_type
		RETURNING $columns
		`,
		accountRowID, descriptor.ID, applicationType,
	)
	if err != nil {
		return nil, oops.New(err, "failed to subscribe to post %s", loc)
	}
	return watch, nil
}

// Removes the watch outright. Replies already fanned out stay.
func Unsubscribe(
	ctx context.Context,
	dbConn db.ConnOrTx,
	accountRowID int64,
	loc models.PostLocator,
	applicationType models.ApplicationType,
) error {
	descriptor, err := FetchPostDescriptor(ctx, dbConn, loc)
	if err != nil {
		if err == db.NotFound {
			return nil
		}
		return err
	}

	_, err = dbConn.Exec(ctx,
		`
		DELETE FROM post_watches
		WHERE owner_account_id = $1 AND owner_post_descriptor_id = $2 AND application_type = $3
		`,
		accountRowID, descriptor.ID, applicationType,
	)
	if err != nil {
		return oops.New(err, "failed to unsubscribe from post %s", loc)
	}
	return nil
}

func FetchPostDescriptor(ctx context.Context, dbConn db.ConnOrTx, loc models.PostLocator) (*models.PostDescriptor, error) {
	descriptor, err := db.QueryOne[models.PostDescriptor](ctx, dbConn,
		`
		SELECT $columns{pd}
		FROM
			post_descriptors AS pd
			JOIN threads ON threads.id = pd.owner_thread_id
		WHERE
			threads.site_name = $1
			AND threads.board_code = $2
			AND threads.thread_no = $3
			AND pd.post_no = $4
			AND pd.post_sub_no = $5
		`,
		loc.Thread.SiteName, loc.Thread.BoardCode, loc.Thread.ThreadNo, loc.PostNo, loc.PostSubNo,
	)
	if err != nil {
		if err == db.NotFound {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch post descriptor %s", loc)
	}
	return descriptor, nil
}

func FetchAccountWatches(ctx context.Context, dbConn db.ConnOrTx, accountRowID int64) ([]*models.PostWatch, error) {
	watches, err := db.Query[models.PostWatch](ctx, dbConn,
		`
		SELECT $columns
		FROM post_watches
		WHERE owner_account_id = $1
		ORDER BY id ASC
		`,
		accountRowID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch account watches")
	}
	return watches, nil
}

// The distinct live threads an account has watches in. Processors poll
// these; a thread nobody watches is not worth fetching.
func WatchedThreads(ctx context.Context, dbConn db.ConnOrTx, accountRowID int64) ([]*models.Thread, error) {
	threads, err := db.Query[models.Thread](ctx, dbConn,
		`
		SELECT DISTINCT $columns{threads}
		FROM
			threads
			JOIN post_descriptors AS pd ON pd.owner_thread_id = threads.id
			JOIN post_watches AS pw ON pw.owner_post_descriptor_id = pd.id
		WHERE
			pw.owner_account_id = $1
			AND NOT threads.is_dead
			AND threads.deleted_on IS NULL
		`,
		accountRowID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch watched threads")
	}
	return threads, nil
}

// Every live thread with at least one watch anywhere, for the polling loop.
func AllWatchedThreads(ctx context.Context, dbConn db.ConnOrTx) ([]*models.Thread, error) {
	threads, err := db.Query[models.Thread](ctx, dbConn,
		`
		SELECT DISTINCT $columns{threads}
		FROM
			threads
			JOIN post_descriptors AS pd ON pd.owner_thread_id = threads.id
			JOIN post_watches AS pw ON pw.owner_post_descriptor_id = pd.id
			JOIN accounts ON accounts.id = pw.owner_account_id
		WHERE
			NOT threads.is_dead
			AND threads.deleted_on IS NULL
			AND accounts.deleted_on IS NULL
			AND (accounts.valid_until IS NULL OR accounts.valid_until > NOW())
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch watched threads")
	}
	return threads, nil
}
