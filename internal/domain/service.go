// Package domain defines the infant-care activity model and the ingestion workflow.
package domain

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrExtractionFailed indicates the text could not be turned into activity items.
	ErrExtractionFailed = errors.New("activity extraction failed")
	// ErrPersistenceFailed indicates a bucket transaction was rolled back.
	ErrPersistenceFailed = errors.New("activity persistence failed")
)

// Extractor turns caregiver text into a classified batch. Any failure is reported as an
// error wrapping ErrExtractionFailed and comes with an empty batch.
type Extractor interface {
	Extract(ctx context.Context, text string) (Batch, error)
}

// Persister stores a classified batch, one transaction per non-empty bucket.
type Persister interface {
	Persist(ctx context.Context, batch Batch) error
}

// RecordReader lists stored records newest first. Read failures yield empty slices.
type RecordReader interface {
	Feeds(ctx context.Context) []FeedRecord
	Pumps(ctx context.Context) []PumpRecord
	Diapers(ctx context.Context) []DiaperRecord
}

// Service orchestrates the ingestion and display workflows.
type Service struct {
	extractor Extractor
	persister Persister
	reader    RecordReader
}

// NewService constructs a Service.
func NewService(extractor Extractor, persister Persister, reader RecordReader) *Service {
	return &Service{extractor: extractor, persister: persister, reader: reader}
}

// Ingest extracts activities from text and persists them. A failed extraction stops the
// pipeline before anything touches the database.
func (s *Service) Ingest(ctx context.Context, text string) (Batch, error) {
	batch, err := s.extractor.Extract(ctx, text)
	if err != nil {
		if !errors.Is(err, ErrExtractionFailed) {
			err = fmt.Errorf("%w: %w", ErrExtractionFailed, err)
		}
		return Batch{}, err
	}

	if err := s.persister.Persist(ctx, batch); err != nil {
		return batch, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}
	return batch, nil
}

// Dashboard reads the three record tables concurrently.
func (s *Service) Dashboard(ctx context.Context) Dashboard {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Feeds = s.reader.Feeds(gctx)
		return nil
	})
	g.Go(func() error {
		d.Pumps = s.reader.Pumps(gctx)
		return nil
	})
	g.Go(func() error {
		d.Diapers = s.reader.Diapers(gctx)
		return nil
	})
	_ = g.Wait()
	return d
}
