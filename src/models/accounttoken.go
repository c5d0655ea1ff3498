package models

// Distinguishes which client application registered a token. A user can
// have several installs of the client (e.g. a debug and a production build)
// on the same device, each with its own push token.
type ApplicationType int

const (
	ApplicationTypeUnknown    ApplicationType = -1
	ApplicationTypeProduction ApplicationType = 0
	ApplicationTypeDebug      ApplicationType = 1
)

func (at ApplicationType) String() string {
	switch at {
	case ApplicationTypeProduction:
		return "production"
	case ApplicationTypeDebug:
		return "debug"
	default:
		return "unknown"
	}
}

type TokenType int

const (
	TokenTypeFirebase TokenType = 0
)

func (tt TokenType) String() string {
	switch tt {
	case TokenTypeFirebase:
		return "firebase"
	default:
		return "unknown"
	}
}

type AccountToken struct {
	ID             int64 `db:"id"`
	OwnerAccountID int64 `db:"owner_account_id"`

	Token           *string         `db:"token"`
	ApplicationType ApplicationType `db:"application_type"`
	TokenType       TokenType       `db:"token_type"`
}
