package dblog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chanwatch/chanwatch/src/db"
	"github.com/chanwatch/chanwatch/src/jobs"
	"github.com/chanwatch/chanwatch/src/logging"
	"github.com/chanwatch/chanwatch/src/models"
	"github.com/chanwatch/chanwatch/src/oops"
	"github.com/chanwatch/chanwatch/src/utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jpillora/backoff"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

/*
This package mirrors log output into the logs table so that it can be
inspected remotely, long after the console scrollback is gone. Writes are
buffered and flushed in batches; logging must never block on the database,
so when the buffer fills up, entries are dropped. The console writer still
sees everything.
*/

const flushInterval = 5 * time.Second
const maxBatchSize = 64
const bufferSize = 1024

type logEntry struct {
	Time    time.Time
	Level   string
	Target  string
	Message string
}

type Sink struct {
	entries chan logEntry
}

var _ zerolog.LevelWriter = &Sink{}

// Creates a database log sink and the background job that flushes it.
// Cancel the job to flush whatever is still buffered and stop.
func NewSink(dbConn *pgxpool.Pool) (*Sink, *jobs.Job) {
	sink := &Sink{
		entries: make(chan logEntry, bufferSize),
	}

	job := jobs.New("database log sink")
	go func() {
		defer job.Finish()

		b := backoff.Backoff{
			Min: 1 * time.Second,
			Max: 1 * time.Minute,
		}

		t := time.NewTicker(flushInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				err := sink.flush(job.Ctx, dbConn)
				if err != nil {
					job.Logger.Error().Err(err).Msg("failed to flush logs to the database")
					utils.SleepContext(job.Ctx, b.Duration())
				} else {
					b.Reset()
				}
			case <-job.Canceled():
				// One last flush so a clean shutdown loses nothing.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				err := sink.flush(ctx, dbConn)
				if err != nil {
					job.Logger.Error().Err(err).Msg("failed to flush logs on shutdown")
				}
				return
			}
		}
	}()

	return sink, job
}

// Routes the global logger through both the console and this sink.
func (s *Sink) AttachToGlobalLogger() {
	log.Logger = log.Output(zerolog.MultiLevelWriter(logging.NewPrettyZerologWriter(), s))
}

func (s *Sink) Write(p []byte) (int, error) {
	return s.WriteLevel(zerolog.InfoLevel, p)
}

func (s *Sink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	entry := logEntry{
		Time:    time.Now(),
		Level:   level.String(),
		Target:  "chanwatch",
		Message: string(p),
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(p, &fields); err == nil {
		if msg, ok := fields[zerolog.MessageFieldName].(string); ok {
			entry.Message = msg
		}
		if job, ok := fields["job"].(string); ok {
			entry.Target = job
		}
	}

	select {
	case s.entries <- entry:
	default:
		// Buffer is full. Drop it; the console writer got it already.
	}
	return len(p), nil
}

func (s *Sink) flush(ctx context.Context, dbConn *pgxpool.Pool) error {
	for {
		var batch []logEntry
	gather:
		for len(batch) < maxBatchSize {
			select {
			case entry := <-s.entries:
				batch = append(batch, entry)
			default:
				break gather
			}
		}
		if len(batch) == 0 {
			return nil
		}

		times := make([]time.Time, len(batch))
		levels := make([]string, len(batch))
		targets := make([]string, len(batch))
		messages := make([]string, len(batch))
		for i, entry := range batch {
			times[i] = entry.Time
			levels[i] = entry.Level
			targets[i] = entry.Target
			messages[i] = entry.Message
		}

		_, err := dbConn.Exec(ctx,
			`
			INSERT INTO logs (log_time, log_level, target, message)
			SELECT * FROM UNNEST(
				$1::TIMESTAMP WITH TIME ZONE[],
				$2::TEXT[],
				$3::TEXT[],
				$4::TEXT[]
			)
			`,
			times, levels, targets, messages,
		)
		if err != nil {
			return oops.New(err, "failed to insert log batch")
		}
	}
}

// Fetches up to num log lines, newest first. Pass the lowest id from the
// previous page as lastID to keep paging; pass zero or less for the first
// page.
func FetchLogs(ctx context.Context, dbConn db.ConnOrTx, lastID int64, num int) ([]*models.LogLine, error) {
	var qb db.QueryBuilder
	qb.Add(`SELECT $columns FROM logs`)
	if lastID > 0 {
		qb.Add(`WHERE id < $?`, lastID)
	}
	qb.Add(`ORDER BY id DESC LIMIT $?`, num)

	lines, err := db.Query[models.LogLine](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch logs")
	}
	return lines, nil
}
