package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nealrs/baby-tracker/internal/domain"
	"github.com/nealrs/baby-tracker/internal/observability"
	"github.com/nealrs/baby-tracker/internal/persistence"
)

const (
	selectFeeds = `SELECT id, time, source, breast_side, breast_duration, bottle_contents, bottle_volume, bottle_volume_unit, notes
        FROM feeds ORDER BY time DESC, id DESC`
	selectPumps = `SELECT id, time, breast_side, volume, volume_unit, notes
        FROM pumps ORDER BY time DESC, id DESC`
	selectDiapers = `SELECT id, time, type, color, notes
        FROM diapers ORDER BY time DESC, id DESC`
)

// Reader implements domain.RecordReader. Failures are logged and yield empty slices.
type Reader struct {
	sessions  persistence.SessionProvider
	formatter persistence.TimeFormatter
	options
}

// NewReader constructs a Reader rendering times with formatter.
func NewReader(sessions persistence.SessionProvider, formatter persistence.TimeFormatter, opts ...Option) *Reader {
	return &Reader{sessions: sessions, formatter: formatter, options: buildOptions(opts)}
}

// Feeds lists stored feeds, newest first.
func (r *Reader) Feeds(ctx context.Context) []domain.FeedRecord {
	return readAll(ctx, r, domain.KindFeed, selectFeeds, func(rows pgx.Rows) (domain.FeedRecord, error) {
		var rec domain.FeedRecord
		err := rows.Scan(&rec.ID, &rec.Time, &rec.Source, &rec.BreastSide, &rec.BreastDuration,
			&rec.BottleContents, &rec.BottleVolume, &rec.BottleVolumeUnit, &rec.Notes)
		rec.DisplayTime = r.formatter.Format(rec.Time)
		return rec, err
	})
}

// Pumps lists stored pumping sessions, newest first.
func (r *Reader) Pumps(ctx context.Context) []domain.PumpRecord {
	return readAll(ctx, r, domain.KindPump, selectPumps, func(rows pgx.Rows) (domain.PumpRecord, error) {
		var rec domain.PumpRecord
		err := rows.Scan(&rec.ID, &rec.Time, &rec.BreastSide, &rec.Volume, &rec.VolumeUnit, &rec.Notes)
		rec.DisplayTime = r.formatter.Format(rec.Time)
		return rec, err
	})
}

// Diapers lists stored diaper changes, newest first.
func (r *Reader) Diapers(ctx context.Context) []domain.DiaperRecord {
	return readAll(ctx, r, domain.KindDiaper, selectDiapers, func(rows pgx.Rows) (domain.DiaperRecord, error) {
		var rec domain.DiaperRecord
		err := rows.Scan(&rec.ID, &rec.Time, &rec.Type, &rec.Color, &rec.Notes)
		rec.DisplayTime = r.formatter.Format(rec.Time)
		return rec, err
	})
}

func readAll[T any](ctx context.Context, r *Reader, kind domain.Kind, query string, scan func(pgx.Rows) (T, error)) []T {
	records, err := queryAll(ctx, r.sessions, query, scan)
	if err != nil {
		observability.RecordReadFailure(string(kind))
		r.logger.Error().Err(err).Str("category", string(kind)).Msg("read failed, showing no records")
		return []T{}
	}
	return records
}

func queryAll[T any](ctx context.Context, sessions persistence.SessionProvider, query string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	session, err := sessions.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire session: %w", err)
	}
	defer session.Release()

	rows, err := session.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	records := make([]T, 0)
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return records, nil
}
