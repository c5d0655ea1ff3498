package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountIDFromUserID(t *testing.T) {
	userID := strings.Repeat("a", 64)

	t.Run("deterministic", func(t *testing.T) {
		first, err := AccountIDFromUserID(userID)
		require.NoError(t, err)
		second, err := AccountIDFromUserID(userID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
	t.Run("always 128 hex chars", func(t *testing.T) {
		accountID, err := AccountIDFromUserID(userID)
		require.NoError(t, err)
		assert.Len(t, accountID, AccountIDLength)
		assert.Regexp(t, "^[0-9a-f]+$", accountID)
	})
	t.Run("different inputs, different ids", func(t *testing.T) {
		a, err := AccountIDFromUserID(strings.Repeat("a", 64))
		require.NoError(t, err)
		b, err := AccountIDFromUserID(strings.Repeat("b", 64))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
	t.Run("rejects bad lengths", func(t *testing.T) {
		_, err := AccountIDFromUserID("too short")
		assert.Error(t, err)
		_, err = AccountIDFromUserID(strings.Repeat("a", 129))
		assert.Error(t, err)
	})
}

func TestMakeRandomIDs(t *testing.T) {
	invite := MakeInviteID()
	assert.Len(t, invite, InviteIDLength)
	for _, c := range invite {
		assert.Contains(t, alphanumerics, string(c))
	}

	userID := MakeUserID()
	assert.Len(t, userID, MaxUserIDLength)
	assert.NotEqual(t, MakeUserID(), userID)

	// Generated user ids must survive the round trip into an account id.
	accountID, err := AccountIDFromUserID(userID)
	assert.NoError(t, err)
	assert.Len(t, accountID, AccountIDLength)
}

func TestFormatToken(t *testing.T) {
	assert.Equal(t, "short", FormatToken("short"))
	assert.Equal(t, "abcde...vwxyz", FormatToken("abcdefghijklmnopqrstuvwxyz"))
}
