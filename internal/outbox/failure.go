package outbox

import (
	"context"

	"github.com/nealrs/baby-tracker/internal/persistence"
)

// DLQWriter persists events that could not be delivered, for investigation.
type DLQWriter struct {
	sessions persistence.SessionProvider
}

// NewDLQWriter initialises a writer backed by the provided session provider.
func NewDLQWriter(sessions persistence.SessionProvider) *DLQWriter {
	return &DLQWriter{sessions: sessions}
}

// Write records a failed outbox message in the DLQ alongside the supplied reason.
func (w *DLQWriter) Write(ctx context.Context, msg Message, reason string) error {
	session, err := w.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer session.Release()

	tx, err := session.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(context.WithoutCancel(ctx))

	if _, err := tx.Exec(ctx,
		`INSERT INTO outbox_dlq (event_id, event_type, topic, payload, reason, aggregate_type, aggregate_id, schema_subject, partition_key)
	         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		msg.EventID, msg.EventType, msg.Topic, msg.Payload, reason, msg.AggregateType, msg.AggregateID, msg.SchemaSubject, msg.PartitionKey,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
