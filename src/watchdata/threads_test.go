package watchdata

import (
	"context"
	"testing"

	"github.com/chanwatch/chanwatch/src/models"
	"github.com/stretchr/testify/assert"
)

func TestAdvanceWatermarkStaleCursor(t *testing.T) {
	thread := &models.Thread{
		ID:                     1,
		LastProcessedPostNo:    100,
		LastProcessedPostSubNo: 2,
	}

	// A cursor at or behind the watermark never reaches the database; the
	// nil connection would panic if it did.
	for _, cursor := range []models.PostCursor{
		{PostNo: 99, PostSubNo: 5},
		{PostNo: 100, PostSubNo: 1},
		{PostNo: 100, PostSubNo: 2},
	} {
		advanced, err := AdvanceWatermark(context.Background(), nil, thread, cursor)
		assert.Nil(t, err)
		assert.False(t, advanced)
	}

	assert.EqualValues(t, 100, thread.LastProcessedPostNo)
	assert.EqualValues(t, 2, thread.LastProcessedPostSubNo)
}
