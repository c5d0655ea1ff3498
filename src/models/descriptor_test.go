package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostCursorAfter(t *testing.T) {
	tests := []struct {
		name   string
		a, b   PostCursor
		expect bool
	}{
		{"greater post no", PostCursor{10, 0}, PostCursor{9, 0}, true},
		{"smaller post no", PostCursor{9, 0}, PostCursor{10, 0}, false},
		{"equal", PostCursor{10, 0}, PostCursor{10, 0}, false},
		{"sub no breaks tie", PostCursor{10, 1}, PostCursor{10, 0}, true},
		{"sub no ignored when post no differs", PostCursor{11, 0}, PostCursor{10, 5}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expect, test.a.After(test.b))
		})
	}
}

func TestDescriptorStrings(t *testing.T) {
	thread := ThreadDescriptor{SiteName: "4chan", BoardCode: "g", ThreadNo: 12345}
	assert.Equal(t, "4chan/g/12345", thread.String())

	post := PostLocator{Thread: thread, PostNo: 12400}
	assert.Equal(t, "4chan/g/12345/12400", post.String())

	ghost := PostLocator{Thread: thread, PostNo: 12400, PostSubNo: 2}
	assert.Equal(t, "4chan/g/12345/12400,2", ghost.String())
}

func TestApplicationTypeString(t *testing.T) {
	assert.Equal(t, "production", ApplicationTypeProduction.String())
	assert.Equal(t, "debug", ApplicationTypeDebug.String())
	assert.Equal(t, "unknown", ApplicationTypeUnknown.String())
	assert.Equal(t, "unknown", ApplicationType(42).String())
}
