package models

import "time"

type Thread struct {
	ID int64 `db:"id"`

	SiteName  string `db:"site_name"`
	BoardCode string `db:"board_code"`
	ThreadNo  int64  `db:"thread_no"`

	IsDead bool `db:"is_dead"`

	// High-water mark of ingestion. Never regresses.
	LastProcessedPostNo    int64 `db:"last_processed_post_no"`
	LastProcessedPostSubNo int64 `db:"last_processed_post_sub_no"`

	CreatedOn    time.Time  `db:"created_on"`
	DeletedOn    *time.Time `db:"deleted_on"`
	LastModified *time.Time `db:"last_modified"`
}

func (t *Thread) Descriptor() ThreadDescriptor {
	return ThreadDescriptor{
		SiteName:  t.SiteName,
		BoardCode: t.BoardCode,
		ThreadNo:  t.ThreadNo,
	}
}

func (t *Thread) Watermark() PostCursor {
	return PostCursor{
		PostNo:    t.LastProcessedPostNo,
		PostSubNo: t.LastProcessedPostSubNo,
	}
}
