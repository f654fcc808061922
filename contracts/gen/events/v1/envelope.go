package v1

import (
	"encoding/json"
	"time"
)

// Envelope wraps every event relayed from the marketplace outbox.
// Fields are append-only; consumers ignore what they do not know.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id,omitempty"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// DecodeData unmarshals the payload into target.
func (e Envelope) DecodeData(target any) error {
	return json.Unmarshal(e.Data, target)
}
