package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type MyError struct{}

func (err *MyError) Error() string {
	return "I want to get off MR BONES WILD RIDE"
}

func TestMust(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		f := func() error { return nil }
		Must(f())
	})
	t.Run("non-nil error", func(t *testing.T) {
		f := func() error { return &MyError{} }
		assert.Panics(t, func() {
			Must(f())
		})
	})
}

func TestMust1(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		f := func() (int, error) { return 3, nil }
		a := Must1(f())
		assert.Equal(t, 3, a)
	})
	t.Run("non-nil error", func(t *testing.T) {
		f := func() (int, error) { return 0, &MyError{} }
		assert.Panics(t, func() {
			Must1(f())
		})
	})
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 5, OrDefault(0, 5))
	assert.Equal(t, 3, OrDefault(3, 5))
	assert.Equal(t, "fallback", OrDefault("", "fallback"))
	assert.Equal(t, "value", OrDefault("value", "fallback"))
}

func TestSleepContext(t *testing.T) {
	t.Run("sleeps the full duration", func(t *testing.T) {
		err := SleepContext(context.Background(), 10*time.Millisecond)
		assert.Nil(t, err)
	})
	t.Run("wakes up on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		before := time.Now()
		err := SleepContext(ctx, 10*time.Second)
		assert.ErrorIs(t, err, ErrSleepInterrupted)
		assert.WithinDuration(t, before, time.Now(), time.Second)
	})
}
