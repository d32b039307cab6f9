package types

// Action identifies the mutation a queue entry represents.
type Action string

// Queue entry actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Valid reports whether a is one of the recognized actions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// QueueEntry is one pending mutation awaiting acknowledgment by the backend.
// Entries are appended in call order and never coalesced: two updates to the
// same record both ride in the queue, relying on the server being idempotent
// per record id.
type QueueEntry struct {
	// ID uniquely identifies the entry within the queue. Derived from
	// "{kind}-{record id}-{timestamp}" when the caller does not supply one.
	ID string `json:"id"`

	// Kind is the entity kind tag ("type" on the wire, matching the
	// backend's vocabulary).
	Kind string `json:"type"`

	Action Action `json:"action"`

	// Data is the entity payload captured at mutation time.
	Data Record `json:"data"`

	// Timestamp is creation time in epoch milliseconds, monotonically
	// increasing per process. Used for ordering and id derivation.
	Timestamp int64 `json:"timestamp"`

	// Synced stays false until the engine confirms server acknowledgment.
	Synced bool `json:"synced"`

	// Endpoint and Method are optional transport overrides for mutations
	// that do not map to the default per-kind endpoint.
	Endpoint string `json:"endpoint,omitempty"`
	Method   string `json:"method,omitempty"`
}

// TransportRecord is the reduced form of a queue entry sent in the sync
// envelope. The payload is dropped: the queue signals which records need
// reconciliation, it does not transport full payloads a second time.
type TransportRecord struct {
	TableName     string `json:"table_name"`
	RecordID      any    `json:"record_id"`
	OperationType Action `json:"operation_type"`
	Timestamp     int64  `json:"timestamp"`
}

// Envelope is the batched submission payload for POST {base}/sync/pending.
type Envelope struct {
	DeviceID string            `json:"device_id"`
	Records  []TransportRecord `json:"records"`
}

// AsTransport reduces the entry to its wire form. The record id prefers the
// payload's own id, falling back to the entry id when the payload carries
// none (matching how the backend attributes partially-saved records).
func (e QueueEntry) AsTransport() TransportRecord {
	var recordID any = e.ID
	if e.Data != nil {
		if raw, ok := e.Data.RawID(); ok {
			recordID = raw
		}
	}
	return TransportRecord{
		TableName:     e.Kind,
		RecordID:      recordID,
		OperationType: e.Action,
		Timestamp:     e.Timestamp,
	}
}
