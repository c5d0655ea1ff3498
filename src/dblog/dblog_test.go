package dblog

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLevel(t *testing.T) {
	t.Run("extracts the message and job fields", func(t *testing.T) {
		sink := &Sink{entries: make(chan logEntry, 4)}

		n, err := sink.WriteLevel(zerolog.WarnLevel, []byte(`{"message":"twelve failed deliveries","job":"notifier"}`))
		require.NoError(t, err)
		assert.True(t, n > 0)

		entry := <-sink.entries
		assert.Equal(t, "warn", entry.Level)
		assert.Equal(t, "twelve failed deliveries", entry.Message)
		assert.Equal(t, "notifier", entry.Target)
	})

	t.Run("keeps the raw line when it is not JSON", func(t *testing.T) {
		sink := &Sink{entries: make(chan logEntry, 4)}

		_, err := sink.WriteLevel(zerolog.InfoLevel, []byte("plain text"))
		require.NoError(t, err)

		entry := <-sink.entries
		assert.Equal(t, "plain text", entry.Message)
		assert.Equal(t, "chanwatch", entry.Target)
	})

	t.Run("drops entries instead of blocking when full", func(t *testing.T) {
		sink := &Sink{entries: make(chan logEntry, 1)}

		_, err := sink.WriteLevel(zerolog.InfoLevel, []byte(`{"message":"first"}`))
		require.NoError(t, err)
		_, err = sink.WriteLevel(zerolog.InfoLevel, []byte(`{"message":"second"}`))
		require.NoError(t, err)

		entry := <-sink.entries
		assert.Equal(t, "first", entry.Message)
		select {
		case extra := <-sink.entries:
			t.Fatalf("expected second entry to be dropped, got %q", extra.Message)
		default:
		}
	})
}
