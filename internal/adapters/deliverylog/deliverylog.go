// Package deliverylog batches delivery outcomes into ClickHouse
package deliverylog

import (
	"context"
	"sync"
	"time"

	"kydu/internal/core/delivery"
	"kydu/internal/platform/logger"
)

// Table is where events land
const Table = "delivery_events"

// DDL creates Table when missing
const DDL = `CREATE TABLE IF NOT EXISTS delivery_events (
	ts           DateTime64(3, 'UTC'),
	recipient_id String,
	kind         LowCardinality(String),
	gig_id       String,
	outcome      LowCardinality(String),
	reason       LowCardinality(String)
) ENGINE = MergeTree
PARTITION BY toYYYYMM(ts)
ORDER BY (ts, recipient_id)
TTL toDateTime(ts) + INTERVAL 90 DAY`

// Writer is the slice of store.Clickhouse the sink needs
type Writer interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Exec(ctx context.Context, sql string, args ...any) error
}

// Config sizes batches
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
}

// Sink implements delivery.Sink; Record buffers and Run flushes
type Sink struct {
	w   Writer
	cfg Config
	log logger.Logger

	mu  sync.Mutex
	buf [][]any
}

// New returns a sink writing through w
func New(w Writer, cfg Config) *Sink {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	return &Sink{w: w, cfg: cfg, log: *logger.Named("deliverylog")}
}

// Ensure creates the table
func (s *Sink) Ensure(ctx context.Context) error {
	return s.w.Exec(ctx, DDL)
}

// Record buffers ev and flushes when the batch is full
func (s *Sink) Record(ctx context.Context, ev delivery.Event) error {
	row := []any{
		ev.At.UTC(),
		ev.RecipientID,
		string(ev.Kind),
		ev.GigID,
		ev.Outcome.Path.String(),
		ev.Outcome.Reason,
	}
	s.mu.Lock()
	s.buf = append(s.buf, row)
	full := len(s.buf) >= s.cfg.BatchSize
	s.mu.Unlock()
	if full {
		return s.Flush(ctx)
	}
	return nil
}

// Flush writes whatever is buffered; a failed batch is dropped
func (s *Sink) Flush(ctx context.Context) error {
	s.mu.Lock()
	rows := s.buf
	s.buf = nil
	s.mu.Unlock()
	if len(rows) == 0 {
		return nil
	}
	if err := s.w.Insert(ctx, Table, rows); err != nil {
		s.log.Warn().Err(err).Int("rows", len(rows)).Msg("delivery events dropped")
		return err
	}
	return nil
}

// Run flushes on an interval until ctx ends, then flushes once more
func (s *Sink) Run(ctx context.Context) {
	t := time.NewTicker(s.cfg.FlushInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			_ = s.Flush(fctx)
			cancel()
			return
		case <-t.C:
			_ = s.Flush(ctx)
		}
	}
}
