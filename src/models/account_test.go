package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountIsValid(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	t.Run("no expiry means valid forever", func(t *testing.T) {
		a := Account{}
		assert.True(t, a.IsValid())
	})
	t.Run("future expiry is valid", func(t *testing.T) {
		a := Account{ValidUntil: &future}
		assert.True(t, a.IsValid())
	})
	t.Run("past expiry is not valid", func(t *testing.T) {
		a := Account{ValidUntil: &past}
		assert.False(t, a.IsValid())
		assert.NotEmpty(t, a.ValidationStatus())
	})
	t.Run("soft-deleted accounts are never valid", func(t *testing.T) {
		a := Account{ValidUntil: &future, DeletedOn: &past}
		assert.False(t, a.IsValid())
	})
}
