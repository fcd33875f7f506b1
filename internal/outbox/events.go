package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nealrs/baby-tracker/internal/domain"
)

// Topic receives every record-logged event; the category is the partition key.
const Topic = "care_events"

// SchemaSubject is the schema registry subject for Topic values.
const SchemaSubject = Topic + "-value"

// Event describes one committed record. It is written inside the bucket transaction
// that stores the record, so it exists iff the record does.
type Event struct {
	BatchID  string
	Category domain.Kind
	Seq      int
	Time     int64
	Record   any
}

// RecordLogged is the JSON payload published to Kafka.
type RecordLogged struct {
	BatchID  string          `json:"batch_id"`
	Category string          `json:"category"`
	Time     int64           `json:"time"`
	Record   json.RawMessage `json:"record"`
}

// EventType names the event for a record category, e.g. "feed.logged".
func EventType(category domain.Kind) string {
	return string(category) + ".logged"
}

// Recorder writes events into the outbox table using the caller's transaction.
type Recorder struct{}

// NewRecorder constructs a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record inserts the event. It never commits; the surrounding bucket transaction does.
func (r *Recorder) Record(ctx context.Context, tx pgx.Tx, ev Event) error {
	record, err := json.Marshal(ev.Record)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", ev.Category, err)
	}
	body, err := json.Marshal(RecordLogged{
		BatchID:  ev.BatchID,
		Category: string(ev.Category),
		Time:     ev.Time,
		Record:   record,
	})
	if err != nil {
		return err
	}

	eventType := EventType(ev.Category)
	if _, ok := schemaCatalog[eventType]; !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}
	dedupeKey := fmt.Sprintf("%s:%s:%d", ev.BatchID, ev.Category, ev.Seq)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		string(ev.Category),
		ev.BatchID,
		eventType,
		Topic,
		SchemaSubject,
		string(ev.Category),
		body,
		dedupeKey,
	)
	return err
}

// SchemaCatalogEntry maps event type to schema definition.
type SchemaCatalogEntry struct {
	Schema string
}

var schemaCatalog = map[string]SchemaCatalogEntry{
	EventType(domain.KindFeed):   {Schema: recordLoggedSchema},
	EventType(domain.KindPump):   {Schema: recordLoggedSchema},
	EventType(domain.KindDiaper): {Schema: recordLoggedSchema},
}

const recordLoggedSchema = `{
  "type": "object",
  "title": "RecordLogged",
  "properties": {
    "batch_id": {"type": "string"},
    "category": {"type": "string", "enum": ["feed", "pump", "diaper"]},
    "time": {"type": "integer"},
    "record": {"type": "object"}
  },
  "required": ["batch_id", "category", "time", "record"],
  "additionalProperties": false
}`
