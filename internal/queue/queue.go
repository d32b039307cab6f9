// Package queue implements the ordered, durable log of pending mutations
// awaiting acknowledgment by the backend.
package queue

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mobiclinic/clinicsync/internal/store"
	"github.com/mobiclinic/clinicsync/pkg/types"
)

// Queue holds not-yet-acknowledged mutations in call order. Every enqueue is
// written through to the store's sync_queue table before returning, so a
// crash immediately after enqueue cannot lose the entry. The in-memory slice
// is always the set of durable entries with synced=false.
//
// Entries are never reordered or coalesced: two updates to the same record
// both ride in the queue, relying on the server being idempotent per record
// id. All mutation goes through Enqueue and Clear; the slice is never handed
// out by reference.
type Queue struct {
	st     *store.Store
	logger *slog.Logger

	mu      sync.Mutex
	entries []types.QueueEntry
	lastTS  int64

	now func() time.Time
}

// New creates an empty queue backed by st for durability.
func New(st *store.Store, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{st: st, logger: logger, now: time.Now}
}

// Rehydrate replaces the in-memory queue with the durable entries still
// marked unsynced. Called once on startup, after the store opens.
func (q *Queue) Rehydrate() error {
	if q.st == nil || !q.st.Initialized() {
		return nil
	}
	entries, err := q.st.LoadQueue()
	if err != nil {
		return fmt.Errorf("rehydrate queue: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = entries
	for _, e := range entries {
		if e.Timestamp > q.lastTS {
			q.lastTS = e.Timestamp
		}
	}
	return nil
}

// Enqueue appends a mutation and writes it through to durable storage.
// An empty entry id is derived as "{kind}-{record id}-{timestamp}"; a zero
// timestamp is assigned from the queue's monotonic clock. The assigned id is
// returned.
//
// If the durable write fails (store unavailable), the entry is kept
// in-memory so the current process still syncs it; durability across a
// restart is lost and a warning is logged.
func (q *Queue) Enqueue(e types.QueueEntry) (string, error) {
	if !e.Action.Valid() {
		return "", fmt.Errorf("enqueue: invalid action %q", e.Action)
	}

	q.mu.Lock()
	if e.Timestamp == 0 {
		e.Timestamp = q.nextTimestampLocked()
	} else if e.Timestamp > q.lastTS {
		q.lastTS = e.Timestamp
	}
	if e.ID == "" {
		e.ID = deriveID(e)
	}
	e.Synced = false
	q.entries = append(q.entries, e)
	q.mu.Unlock()

	if err := q.st.AppendQueueEntry(e); err != nil {
		q.logger.Warn("queue entry not persisted, in-memory only",
			"id", e.ID, "error", err)
	}
	return e.ID, nil
}

// Snapshot produces the reduced wire form of every pending entry, in queue
// order. The result is a fresh copy each call, safe for the engine to hold
// across its HTTP exchange.
func (q *Queue) Snapshot() []types.TransportRecord {
	q.mu.Lock()
	defer q.mu.Unlock()

	records := make([]types.TransportRecord, 0, len(q.entries))
	for _, e := range q.entries {
		records = append(records, e.AsTransport())
	}
	return records
}

// Entries returns a copy of the pending entries, full payloads included.
// Used for operator-facing listings, never for transport.
func (q *Queue) Entries() []types.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]types.QueueEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Clear marks every entry synced and empties both the in-memory queue and
// its durable mirror. Only the sync engine calls this, and only after a
// confirmed 2xx submission.
func (q *Queue) Clear() error {
	q.mu.Lock()
	for i := range q.entries {
		q.entries[i].Synced = true
	}
	q.entries = nil
	q.mu.Unlock()

	if err := q.st.ClearQueue(); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}

// PendingCount returns the number of unacknowledged mutations. O(1); polled
// frequently by UI indicators.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// nextTimestampLocked returns the current time in epoch milliseconds, bumped
// past the previous value so timestamps stay strictly increasing within one
// process even when enqueues land inside the same millisecond.
func (q *Queue) nextTimestampLocked() int64 {
	ts := q.now().UnixMilli()
	if ts <= q.lastTS {
		ts = q.lastTS + 1
	}
	q.lastTS = ts
	return ts
}

// deriveID builds the default entry id "{kind}-{record id}-{timestamp}".
// Payloads without an id contribute "local", matching the backend's
// convention for records created offline before id assignment.
func deriveID(e types.QueueEntry) string {
	recordID := "local"
	if e.Data != nil {
		if id, ok := e.Data.ID(); ok {
			recordID = id
		}
	}
	return fmt.Sprintf("%s-%s-%d", e.Kind, recordID, e.Timestamp)
}
