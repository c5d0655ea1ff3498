package watchdata

import (
	"testing"

	"github.com/chanwatch/chanwatch/src/models"
	"github.com/stretchr/testify/assert"
)

func TestPendingNotificationLocator(t *testing.T) {
	n := PendingNotification{
		Thread: models.Thread{
			SiteName:  "4chan",
			BoardCode: "g",
			ThreadNo:  123456,
		},
		Descriptor: models.PostDescriptor{
			PostNo:    123500,
			PostSubNo: 2,
		},
	}

	loc := n.Locator()
	assert.Equal(t, "4chan/g/123456", loc.Thread.String())
	assert.EqualValues(t, 123500, loc.PostNo)
	assert.EqualValues(t, 2, loc.PostSubNo)
}
