package watchdata

import (
	"testing"

	"github.com/chanwatch/chanwatch/src/models"
	"github.com/stretchr/testify/assert"
)

func TestClassifyTokenRegistration(t *testing.T) {
	pairToken := func(owner int64, token string) *models.AccountToken {
		return &models.AccountToken{
			ID:              owner*100 + 1,
			OwnerAccountID:  owner,
			Token:           &token,
			ApplicationType: models.ApplicationTypeProduction,
			TokenType:       models.TokenTypeFirebase,
		}
	}

	t.Run("fresh registration inserts", func(t *testing.T) {
		action := classifyTokenRegistration(1, nil, nil)
		assert.Equal(t, tokenRegistrationInsert, action)
	})

	t.Run("rotation replaces instead of accumulating", func(t *testing.T) {
		// The account already holds a token for this pair, and registers
		// a different one. The existing row must be updated in place, not
		// joined by a second row for the same pair.
		action := classifyTokenRegistration(1, nil, pairToken(1, "old-device-token"))
		assert.Equal(t, tokenRegistrationReplace, action)
	})

	t.Run("re-registering the same token is a no-op", func(t *testing.T) {
		existing := pairToken(1, "same-device-token")
		action := classifyTokenRegistration(1, existing, existing)
		assert.Equal(t, tokenRegistrationNoop, action)
	})

	t.Run("token held by another account conflicts", func(t *testing.T) {
		action := classifyTokenRegistration(1, pairToken(2, "stolen-token"), nil)
		assert.Equal(t, tokenRegistrationConflict, action)

		// Conflict wins even when the registering account also has its
		// own row for the pair.
		action = classifyTokenRegistration(1, pairToken(2, "stolen-token"), pairToken(1, "my-token"))
		assert.Equal(t, tokenRegistrationConflict, action)
	})
}
