package watchdata

import (
	"context"

	"github.com/chanwatch/chanwatch/src/db"
	"github.com/chanwatch/chanwatch/src/models"
	"github.com/chanwatch/chanwatch/src/oops"
)

// Ensures a post row exists for a descriptor and returns it. Posts carry
// mutable state (dead, deleted) that descriptors never do.
func EnsurePost(ctx context.Context, dbConn db.ConnOrTx, postDescriptorID int64) (*models.Post, error) {
	post, err := db.QueryOne[models.Post](ctx, dbConn,
		`
		INSERT INTO posts (owner_post_descriptor_id)
		VALUES ($1)
		ON CONFLICT (owner_post_descriptor_id)
			DO UPDATE SET owner_post_descriptor_id = posts.owner_post_descriptor_id
		RETURNING $columns
		`,
		postDescriptorID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to ensure post")
	}
	return post, nil
}

func FetchPost(ctx context.Context, dbConn db.ConnOrTx, postDescriptorID int64) (*models.Post, error) {
	post, err := db.QueryOne[models.Post](ctx, dbConn,
		`
		SELECT $columns
		FROM posts
		WHERE owner_post_descriptor_id = $1
		`,
		postDescriptorID,
	)
	if err != nil {
		if err == db.NotFound {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch post")
	}
	return post, nil
}

func MarkPostDead(ctx context.Context, dbConn db.ConnOrTx, postDescriptorID int64) error {
	_, err := dbConn.Exec(ctx,
		`UPDATE posts SET is_dead = TRUE WHERE owner_post_descriptor_id = $1`,
		postDescriptorID,
	)
	if err != nil {
		return oops.New(err, "failed to mark post dead")
	}
	return nil
}

// When a whole thread dies, every post in it dies with it.
func MarkThreadPostsDead(ctx context.Context, dbConn db.ConnOrTx, threadID int64) (int64, error) {
	tag, err := dbConn.Exec(ctx,
		`
		UPDATE posts
		SET is_dead = TRUE
		FROM post_descriptors
		WHERE
			posts.owner_post_descriptor_id = post_descriptors.id
			AND post_descriptors.owner_thread_id = $1
			AND NOT posts.is_dead
		`,
		threadID,
	)
	if err != nil {
		return 0, oops.New(err, "failed to mark thread posts dead")
	}
	return tag.RowsAffected(), nil
}
