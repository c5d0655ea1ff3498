package watchdata

import (
	"context"
	"errors"
	"time"

	"github.com/chanwatch/chanwatch/src/auth"
	"github.com/chanwatch/chanwatch/src/db"
	"github.com/chanwatch/chanwatch/src/models"
	"github.com/chanwatch/chanwatch/src/oops"
)

// The token is already attached to a different account. Tokens identify a
// device install, so two accounts claiming the same one is always a client
// bug and never something to silently repair.
var ErrTokenConflict = errors.New("token is registered to another account")

// Fetches an account by its public account id (the hashed user id, not the
// row id). Returns db.NotFound if it does not exist.
func FetchAccount(ctx context.Context, dbConn db.ConnOrTx, accountID string) (*models.Account, error) {
	account, err := db.QueryOne[models.Account](ctx, dbConn,
		`
		SELECT $columns
		FROM accounts
		WHERE account_id = $1 AND deleted_on IS NULL
		`,
		accountID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch account")
	}
	return account, nil
}

// Returns the account for an account id, creating it if it does not exist
// yet. Racing callers all get the same row back.
func EnsureAccount(ctx context.Context, dbConn db.ConnOrTx, accountID string) (*models.Account, error) {
	account, err := db.QueryOne[models.Account](ctx, dbConn,
		`
		INSERT INTO accounts (account_id)
		VALUES ($1)
		ON CONFLICT (account_id) DO UPDATE SET account_id = accounts.account_id
		RETURNING $columns
		`,
		accountID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to ensure account")
	}
	return account, nil
}

func CreateAccount(ctx context.Context, dbConn db.ConnOrTx, accountID string, validUntil *time.Time) (*models.Account, error) {
	account, err := db.QueryOne[models.Account](ctx, dbConn,
		`
		INSERT INTO accounts (account_id, valid_until)
		VALUES ($1, $2)
		RETURNING $columns
		`,
		accountID, validUntil,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create account")
	}
	return account, nil
}

func UpdateAccountExpiry(ctx context.Context, dbConn db.ConnOrTx, accountID string, validUntil *time.Time) error {
	tag, err := dbConn.Exec(ctx,
		`UPDATE accounts SET valid_until = $2 WHERE account_id = $1`,
		accountID, validUntil,
	)
	if err != nil {
		return oops.New(err, "failed to update account expiry")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}

// Cuts an account off immediately. The rows stay around so delivery history
// survives, but the account stops matching every notification query.
func ExpireAccount(ctx context.Context, dbConn db.ConnOrTx, accountID string) error {
	now := time.Now()
	return UpdateAccountExpiry(ctx, dbConn, accountID, &now)
}

/*
Attaches a push token to an account. An account holds at most one token
per (application_type, token_type) pair, so registering a new token for a
pair the account already has a row for replaces the stored token; device
tokens rotate, and accumulating the old ones would keep delivery pushing
to dead registrations forever. Re-registering the identical token is a
no-op. Returns ErrTokenConflict if another account holds the same token
with the same application and token type.
*/
func RegisterToken(
	ctx context.Context,
	dbConn db.ConnOrTx,
	accountRowID int64,
	token string,
	applicationType models.ApplicationType,
	tokenType models.TokenType,
) (*models.AccountToken, error) {
	err := auth.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	holder, err := db.QueryOne[models.AccountToken](ctx, dbConn,
		`
		SELECT $columns
		FROM account_tokens
		WHERE token = $1 AND application_type = $2 AND token_type = $3
		`,
		token, applicationType, tokenType,
	)
	if err != nil && !errors.Is(err, db.NotFound) {
		return nil, oops.New(err, "failed to look up token")
	}

	current, err := db.QueryOne[models.AccountToken](ctx, dbConn,
		`
		SELECT $columns
		FROM account_tokens
		WHERE owner_account_id = $1 AND application_type = $2 AND token_type = $3
		`,
		accountRowID, applicationType, tokenType,
	)
	if err != nil && !errors.Is(err, db.NotFound) {
		return nil, oops.New(err, "failed to look up account token")
	}

	switch classifyTokenRegistration(accountRowID, holder, current) {
	case tokenRegistrationConflict:
		return nil, ErrTokenConflict
	case tokenRegistrationNoop:
		return holder, nil
	case tokenRegistrationReplace:
		updated, err := db.QueryOne[models.AccountToken](ctx, dbConn,
			`UPDATE account_tokens SET token = $2 WHERE id = $1 RETURNING $columns`,
			current.ID, token,
		)
		if err != nil {
			return nil, oops.New(err, "failed to replace token")
		}
		return updated, nil
	default:
		inserted, err := db.QueryOne[models.AccountToken](ctx, dbConn,
			`
			INSERT INTO account_tokens (owner_account_id, token, application_type, token_type)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (token, application_type, token_type) DO NOTHING
			RETURNING $columns
			`,
			accountRowID, token, applicationType, tokenType,
		)
		if err != nil {
			if errors.Is(err, db.NotFound) {
				// A concurrent registration claimed the token between our
				// lookup and the insert.
				return nil, ErrTokenConflict
			}
			return nil, oops.New(err, "failed to register token")
		}
		return inserted, nil
	}
}

type tokenRegistrationAction int

const (
	tokenRegistrationInsert tokenRegistrationAction = iota
	tokenRegistrationReplace
	tokenRegistrationNoop
	tokenRegistrationConflict
)

// Decides what registering a token means, given who currently holds the
// exact token (holder) and the registering account's existing row for the
// same (application_type, token_type) pair (current). Either may be nil.
func classifyTokenRegistration(accountRowID int64, holder, current *models.AccountToken) tokenRegistrationAction {
	if holder != nil {
		if holder.OwnerAccountID != accountRowID {
			return tokenRegistrationConflict
		}
		return tokenRegistrationNoop
	}
	if current != nil {
		return tokenRegistrationReplace
	}
	return tokenRegistrationInsert
}

func FetchAccountTokens(ctx context.Context, dbConn db.ConnOrTx, accountRowID int64) ([]*models.AccountToken, error) {
	tokens, err := db.Query[models.AccountToken](ctx, dbConn,
		`
		SELECT $columns
		FROM account_tokens
		WHERE owner_account_id = $1
		ORDER BY id ASC
		`,
		accountRowID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch account tokens")
	}
	return tokens, nil
}
