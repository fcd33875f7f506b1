// Package extraction turns free caregiver text into classified activity items using a
// schema-constrained generative model.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nealrs/baby-tracker/internal/domain"
	"github.com/nealrs/baby-tracker/internal/observability"
)

// Generator is the generative-text capability: prompt in, schema-conforming JSON text out.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Option configures optional behaviour for the Extractor.
type Option func(*Extractor)

// WithLogger overrides the logger used to report failures and dropped items.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// Extractor implements domain.Extractor.
type Extractor struct {
	generator Generator
	logger    zerolog.Logger
}

// NewExtractor constructs an Extractor around the provided generator.
func NewExtractor(generator Generator, opts ...Option) *Extractor {
	e := &Extractor{
		generator: generator,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract calls the generator, sanitizes its output and classifies the items. Every
// failure is logged and returned as an error wrapping domain.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, text string) (domain.Batch, error) {
	start := time.Now()
	raw, err := e.generator.GenerateJSON(ctx, BuildPrompt(text))
	observability.ObserveExtraction(time.Since(start), err == nil)
	if err != nil {
		e.logger.Error().Err(err).Msg("extraction call failed")
		return domain.Batch{}, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	e.logger.Debug().Str("response", raw).Msg("extraction response received")

	items, err := Sanitize(raw)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			e.logger.Error().Err(perr.Err).Str("payload", perr.Payload).Msg("extraction response is not valid JSON")
		}
		return domain.Batch{}, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	batch, dropped := domain.Classify(items)
	for _, item := range dropped {
		e.logger.Warn().Str("activity", string(item.Activity)).Msg("dropping record with unknown activity type")
	}
	observability.RecordDropped(len(dropped))

	e.logger.Info().
		Int("feeds", len(batch.Feeds)).
		Int("pumps", len(batch.Pumps)).
		Int("diapers", len(batch.Diapers)).
		Int("dropped", len(dropped)).
		Msg("extracted activities")
	return batch, nil
}
