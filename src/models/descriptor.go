package models

import "fmt"

// The identity of a remote thread, independent of our database ids.
type ThreadDescriptor struct {
	SiteName  string
	BoardCode string
	ThreadNo  int64
}

func (td ThreadDescriptor) String() string {
	return fmt.Sprintf("%s/%s/%d", td.SiteName, td.BoardCode, td.ThreadNo)
}

// The identity of a single post within a thread. PostSubNo is zero for
// regular posts and disambiguates ghost posts on sites that have them.
type PostLocator struct {
	Thread    ThreadDescriptor
	PostNo    int64
	PostSubNo int64
}

func (pl PostLocator) String() string {
	if pl.PostSubNo == 0 {
		return fmt.Sprintf("%s/%d", pl.Thread, pl.PostNo)
	}
	return fmt.Sprintf("%s/%d,%d", pl.Thread, pl.PostNo, pl.PostSubNo)
}

// A position in a thread, used as the ingestion watermark.
type PostCursor struct {
	PostNo    int64
	PostSubNo int64
}

// Reports whether c is strictly past other. Sub-numbers only break ties
// between equal post numbers.
func (c PostCursor) After(other PostCursor) bool {
	if c.PostNo != other.PostNo {
		return c.PostNo > other.PostNo
	}
	return c.PostSubNo > other.PostSubNo
}
