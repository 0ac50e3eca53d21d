package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// The progress journal.
//
// Every mutation of the progress record is appended here as a small event so
// the learner's history can be listed later. The journal is append-only and
// ordered by its autoincrement id; the progress record itself stays the
// source of truth and never reads from the journal.

const eventsTable = "progress_events"

var eventColumns = []string{"id", "session_id", "kind", "lesson", "path_id", "detail", "created_at"}

type eventRepo struct {
	drv *entsql.Driver
}

func (r *eventRepo) AppendProgressEvent(ctx context.Context, data ProgressEventData) error {
	ts := data.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(eventsTable).
		Columns("session_id", "kind", "lesson", "path_id", "detail", "created_at").
		Values(data.SessionID, data.Kind, data.Lesson, data.PathID, data.Detail, ts.UnixMilli()).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save progress event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryProgressEvents(ctx context.Context, opts QueryOpts) ([]ProgressEventRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(eventColumns...).
		From(entsql.Table(eventsTable)).
		OrderBy(entsql.Desc("id"))

	if opts.After > 0 {
		sel.Where(entsql.GT("id", opts.After))
	}
	if opts.Kind != "" {
		sel.Where(entsql.EQ("kind", opts.Kind))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("created_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("created_at", opts.To.UnixMilli()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query progress events: %w", err)
	}
	defer rows.Close()

	var out []ProgressEventRecord
	for rows.Next() {
		var (
			rec       ProgressEventRecord
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Kind, &rec.Lesson, &rec.PathID, &rec.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan progress event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(createdAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress events: %w", err)
	}
	return out, nil
}
