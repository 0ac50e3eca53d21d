package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	After int64     // id > After
	Kind  string    // exact kind match ("" = any)
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To
}

// ProgressEventData captures one mutation of the progress record.
type ProgressEventData struct {
	SessionID string
	Kind      string
	Lesson    string
	PathID    string
	Detail    string
	Timestamp time.Time // zero means now
}

// ProgressEventRecord is a stored progress event.
type ProgressEventRecord struct {
	ID int64
	ProgressEventData
}

// EventRepo provides append and query access to the progress journal.
type EventRepo interface {
	// AppendProgressEvent records a progress mutation.
	AppendProgressEvent(ctx context.Context, data ProgressEventData) error

	// QueryProgressEvents returns events newest first.
	QueryProgressEvents(ctx context.Context, opts QueryOpts) ([]ProgressEventRecord, error)
}
