package watchdata

import (
	"context"
	"errors"
	"time"

	"github.com/chanwatch/chanwatch/src/auth"
	"github.com/chanwatch/chanwatch/src/db"
	"github.com/chanwatch/chanwatch/src/jobs"
	"github.com/chanwatch/chanwatch/src/models"
	"github.com/chanwatch/chanwatch/src/oops"
	"github.com/jackc/pgx/v5/pgxpool"
)

const InviteLifetime = 24 * time.Hour
const TrialAccountLifetime = 7 * 24 * time.Hour

var ErrInviteNotFound = errors.New("invite does not exist, was already accepted, or expired")

func GenerateInvites(ctx context.Context, dbConn db.ConnOrTx, count int) ([]*models.Invite, error) {
	var invites []*models.Invite
	for i := 0; i < count; i++ {
		invite, err := db.QueryOne[models.Invite](ctx, dbConn,
			`
			INSERT INTO invites (invite_id, expires_on)
			VALUES ($1, $2)
			RETURNING $columns
			`,
			auth.MakeInviteID(), time.Now().Add(InviteLifetime),
		)
		if err != nil {
			return nil, oops.New(err, "failed to generate invite")
		}
		invites = append(invites, invite)
	}
	return invites, nil
}

/*
Consumes an invite and creates a trial account for the given user id. The
invite lookup and the account insert happen in one transaction, so an
invite can never create two accounts. Returns ErrInviteNotFound when the
invite is missing, already used, or past its expiry.
*/
func AcceptInvite(ctx context.Context, dbConn *pgxpool.Pool, inviteID string, userID string) (*models.Account, error) {
	accountID, err := auth.AccountIDFromUserID(userID)
	if err != nil {
		return nil, err
	}

	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	invite, err := db.QueryOne[models.Invite](ctx, tx,
		`
		SELECT $columns
		FROM invites
		WHERE invite_id = $1 AND accepted_on IS NULL AND expires_on > NOW()
		FOR UPDATE
		`,
		inviteID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, oops.New(err, "failed to look up invite")
	}

	_, err = tx.Exec(ctx,
		`UPDATE invites SET accepted_on = NOW() WHERE id = $1`,
		invite.ID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to mark invite accepted")
	}

	validUntil := time.Now().Add(TrialAccountLifetime)
	account, err := CreateAccount(ctx, tx, accountID, &validUntil)
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to commit invite acceptance")
	}
	return account, nil
}

// Deletes invites that expired without being accepted. Accepted invites
// stay forever as a record of where accounts came from.
func CleanupExpiredInvites(ctx context.Context, dbConn db.ConnOrTx) (int64, error) {
	tag, err := dbConn.Exec(ctx,
		`DELETE FROM invites WHERE accepted_on IS NULL AND expires_on < NOW()`,
	)
	if err != nil {
		return 0, oops.New(err, "failed to delete expired invites")
	}
	return tag.RowsAffected(), nil
}

func PeriodicallyCleanupExpiredStuff(dbConn *pgxpool.Pool) *jobs.Job {
	job := jobs.New("cleanup expired stuff")
	go func() {
		defer job.Finish()

		t := time.NewTicker(1 * time.Hour)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				n, err := CleanupExpiredInvites(job.Ctx, dbConn)
				if err != nil {
					job.Logger.Error().Err(err).Msg("failed to clean up expired invites")
				} else if n > 0 {
					job.Logger.Info().Int64("num deleted invites", n).Msg("Deleted expired invites")
				}
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}
