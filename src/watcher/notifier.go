package watcher

import (
	"context"
	"time"

	"github.com/chanwatch/chanwatch/src/auth"
	"github.com/chanwatch/chanwatch/src/jobs"
	"github.com/chanwatch/chanwatch/src/logging"
	"github.com/chanwatch/chanwatch/src/watchdata"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notifierInterval = 30 * time.Second
const notifierBatchSize = 100

// A Deliverer pushes one notification to one device. The notifier loop
// handles batching, attempt counting, and retries; a Deliverer only has
// to succeed or fail.
type Deliverer interface {
	Deliver(ctx context.Context, n *watchdata.PendingNotification) error
}

// Logs notifications instead of pushing them. Used in dev, where there is
// no push service to talk to.
type LogDeliverer struct{}

func NewLogDeliverer() *LogDeliverer {
	return &LogDeliverer{}
}

func (d *LogDeliverer) Deliver(ctx context.Context, n *watchdata.PendingNotification) error {
	token := ""
	if n.Token.Token != nil {
		token = *n.Token.Token
	}
	logging.ExtractLogger(ctx).Info().
		Stringer("post", n.Locator()).
		Str("token", auth.FormatToken(token)).
		Msg("Would deliver reply notification")
	return nil
}

func RunNotifier(dbConn *pgxpool.Pool, deliverer Deliverer) *jobs.Job {
	job := jobs.New("notifier")
	go func() {
		defer job.Finish()

		t := time.NewTicker(notifierInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				err := deliverPending(job.Ctx, dbConn, deliverer)
				if err != nil {
					job.Logger.Error().Err(err).Msg("failed to deliver notifications")
				}
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}

func deliverPending(ctx context.Context, dbConn *pgxpool.Pool, deliverer Deliverer) error {
	pending, err := watchdata.PendingNotifications(ctx, dbConn, notifierBatchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	// Charge the attempt up front. If we crash mid-batch, the replies
	// still burn an attempt instead of retrying forever.
	replyIDs := make([]int64, 0, len(pending))
	seen := make(map[int64]bool)
	for _, n := range pending {
		if !seen[n.Reply.ID] {
			seen[n.Reply.ID] = true
			replyIDs = append(replyIDs, n.Reply.ID)
		}
	}
	err = watchdata.BumpDeliveryAttempts(ctx, dbConn, replyIDs)
	if err != nil {
		return err
	}

	// A reply counts as delivered when every one of its tokens took the
	// push. Partial failures retry the whole reply on a later attempt.
	failed := make(map[int64]bool)
	for _, n := range pending {
		err := deliverer.Deliver(ctx, n)
		if err != nil {
			failed[n.Reply.ID] = true
			logging.ExtractLogger(ctx).Warn().
				Err(err).
				Int64("reply", n.Reply.ID).
				Int("attempt", n.Reply.NotificationDeliveryAttempt+1).
				Msg("Failed to deliver notification")
		}
	}

	var delivered []int64
	for _, id := range replyIDs {
		if !failed[id] {
			delivered = append(delivered, id)
		}
	}
	n, err := watchdata.MarkRepliesDelivered(ctx, dbConn, delivered)
	if err != nil {
		return err
	}
	if n > 0 {
		logging.ExtractLogger(ctx).Info().Int64("num delivered", n).Msg("Delivered reply notifications")
	}
	return nil
}
