// Package postgres stores and lists activity records in Postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/nealrs/baby-tracker/internal/domain"
	"github.com/nealrs/baby-tracker/internal/observability"
	"github.com/nealrs/baby-tracker/internal/outbox"
	"github.com/nealrs/baby-tracker/internal/persistence"
)

// EventRecorder writes a record-logged event inside the bucket transaction.
type EventRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, ev outbox.Event) error
}

type options struct {
	logger zerolog.Logger
	now    func() time.Time
	events EventRecorder
}

// Option configures a Persister or Reader.
type Option func(*options)

// WithLogger sets the logger used for commits, rollbacks and read failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides the clock used to stamp inserted rows.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithEvents enables writing one outbox event per inserted record.
func WithEvents(events EventRecorder) Option {
	return func(o *options) {
		o.events = events
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Persister implements domain.Persister with one transaction per non-empty bucket.
type Persister struct {
	sessions persistence.SessionProvider
	options
}

// NewPersister constructs a Persister.
func NewPersister(sessions persistence.SessionProvider, opts ...Option) *Persister {
	return &Persister{sessions: sessions, options: buildOptions(opts)}
}

type table[T any] struct {
	kind   domain.Kind
	insert string
	args   func(ts int64, v T) []any
}

var feedTable = table[domain.Feed]{
	kind: domain.KindFeed,
	insert: `INSERT INTO feeds (time, source, breast_side, breast_duration, bottle_contents, bottle_volume, bottle_volume_unit, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
	args: func(ts int64, f domain.Feed) []any {
		return []any{ts, text(f.Source), text(f.BreastSide), f.BreastDuration, text(f.BottleContents), f.BottleVolume, text(f.BottleVolumeUnit), f.Notes}
	},
}

var pumpTable = table[domain.Pump]{
	kind: domain.KindPump,
	insert: `INSERT INTO pumps (time, breast_side, volume, volume_unit, notes)
        VALUES ($1,$2,$3,$4,$5)`,
	args: func(ts int64, p domain.Pump) []any {
		return []any{ts, text(p.BreastSide), p.Volume, text(p.VolumeUnit), p.Notes}
	},
}

var diaperTable = table[domain.Diaper]{
	kind: domain.KindDiaper,
	insert: `INSERT INTO diapers (time, type, color, notes)
        VALUES ($1,$2,$3,$4)`,
	args: func(ts int64, d domain.Diaper) []any {
		return []any{ts, text(d.Type), d.Color, d.Notes}
	},
}

// Persist stores feeds, then pumps, then diapers. Each bucket commits on its own; the
// first failing bucket is returned and later buckets are not attempted.
func (p *Persister) Persist(ctx context.Context, batch domain.Batch) error {
	if batch.Empty() {
		return nil
	}
	batchID := uuid.NewString()

	if err := persistBucket(ctx, p, feedTable, batchID, batch.Feeds); err != nil {
		return err
	}
	if err := persistBucket(ctx, p, pumpTable, batchID, batch.Pumps); err != nil {
		return err
	}
	return persistBucket(ctx, p, diaperTable, batchID, batch.Diapers)
}

func persistBucket[T any](ctx context.Context, p *Persister, t table[T], batchID string, items []T) (err error) {
	if len(items) == 0 {
		return nil
	}
	logger := p.logger.With().Str("category", string(t.kind)).Str("batch_id", batchID).Logger()

	session, err := p.sessions.Acquire(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("acquire session failed")
		return fmt.Errorf("acquire session for %s: %w", t.kind, err)
	}
	defer session.Release()

	tx, err := session.Begin(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("begin transaction failed")
		return fmt.Errorf("begin %s transaction: %w", t.kind, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Error().Err(rbErr).Msg("rollback failed")
		}
		observability.RecordBucketRollback(string(t.kind))
		logger.Error().Err(err).Int("rows", len(items)).Msg("bucket rolled back")
	}()

	var last int64
	for i, item := range items {
		ts := p.now().UnixMilli()
		if ts < last {
			ts = last
		}
		last = ts

		if _, err = tx.Exec(ctx, t.insert, t.args(ts, item)...); err != nil {
			return fmt.Errorf("insert %s %d of %d: %w", t.kind, i+1, len(items), err)
		}
		if p.events == nil {
			continue
		}
		ev := outbox.Event{BatchID: batchID, Category: t.kind, Seq: i, Time: ts, Record: item}
		if err = p.events.Record(ctx, tx, ev); err != nil {
			return fmt.Errorf("record %s event %d of %d: %w", t.kind, i+1, len(items), err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s transaction: %w", t.kind, err)
	}
	observability.RecordBucketCommitted(string(t.kind), len(items), time.UnixMilli(last))
	logger.Info().Int("rows", len(items)).Msg("bucket committed")
	return nil
}

// text converts an optional enum to an optional string so it binds as SQL text or NULL.
func text[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
