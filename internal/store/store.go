package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mobiclinic/clinicsync/pkg/types"
)

// DBFileName is the SQLite database file created inside the data directory.
const DBFileName = "clinic.db"

// Store is the durable local mirror of backend entities. Access is
// serialized by an internal mutex; callers never share raw connections.
//
// A Store that failed to initialize (no usable data directory, unsupported
// environment) stays in the uninitialized state: every operation returns
// types.ErrNotInitialized instead of crashing the calling flow.
type Store struct {
	mu          sync.RWMutex
	db          *sql.DB
	initialized bool
	logger      *slog.Logger
}

// New creates an unopened Store. Call Initialize before use.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// Initialize opens (creating if absent) the durable storage and ensures the
// schema exists. It is idempotent: calling it again on an open store is a
// no-op, and reopening an existing database never destroys data.
//
// An empty dataDir, or a directory that cannot be created or written, leaves
// the store uninitialized and returns nil: the caller degrades to in-memory
// behavior rather than failing outright.
func (s *Store) Initialize(dataDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if dataDir == "" {
		s.logger.Warn("no data directory configured, local store disabled")
		return nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		s.logger.Warn("cannot create data directory, local store disabled",
			"dir", dataDir, "error", err)
		return nil
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		s.logger.Warn("cannot open local store, running without persistence",
			"path", dbPath, "error", err)
		return nil
	}

	// Crash-safe puts: WAL keeps a committed write durable even if the
	// process dies immediately after.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		s.logger.Warn("cannot enable WAL, local store disabled", "error", err)
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			s.logger.Warn("schema bootstrap failed, local store disabled",
				"error", err)
			return nil
		}
	}

	s.db = db
	s.initialized = true
	return nil
}

// Initialized reports whether durable storage is available.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Close releases the database handle. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil
	}
	s.initialized = false
	db := s.db
	s.db = nil
	return db.Close()
}

// Put inserts or overwrites the record at its id in the kind's table.
func (s *Store) Put(kind string, rec types.Record) error {
	if !types.KnownKind(kind) {
		return fmt.Errorf("put %q: %w", kind, types.ErrKindUnknown)
	}
	id, ok := rec.ID()
	if !ok {
		return fmt.Errorf("put %q: %w", kind, types.ErrRecordNoID)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("put %s/%s: encode: %w", kind, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return types.ErrNotInitialized
	}

	// Kind is validated against the closed set above, so the table name
	// interpolation is safe.
	q := fmt.Sprintf(
		`INSERT INTO %s (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		kind)
	if _, err := s.db.Exec(q, id, string(payload), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("put %s/%s: %w", kind, id, err)
	}
	return nil
}

// GetAll returns every record in the kind's table. Order carries no meaning.
func (s *Store) GetAll(kind string) ([]types.Record, error) {
	if !types.KnownKind(kind) {
		return nil, fmt.Errorf("get all %q: %w", kind, types.ErrKindUnknown)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, types.ErrNotInitialized
	}

	rows, err := s.db.Query(fmt.Sprintf(`SELECT data FROM %s`, kind))
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", kind, err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("get all %s: scan: %w", kind, err)
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("get all %s: decode: %w", kind, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetByID returns one record, or types.ErrNotFound when the id is absent.
// Absence is a common outcome, not a failure.
func (s *Store) GetByID(kind, id string) (types.Record, error) {
	if !types.KnownKind(kind) {
		return nil, fmt.Errorf("get %q: %w", kind, types.ErrKindUnknown)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, types.ErrNotInitialized
	}

	var raw string
	err := s.db.QueryRow(fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, kind), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", kind, id, err)
	}

	var rec types.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("get %s/%s: decode: %w", kind, id, err)
	}
	return rec, nil
}

// GetSetting returns the value for key from the settings table, or
// types.ErrNotFound when unset.
func (s *Store) GetSetting(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return "", types.ErrNotInitialized
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", types.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// PutSetting inserts or overwrites a settings value.
func (s *Store) PutSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return types.ErrNotInitialized
	}

	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

// AppendQueueEntry persists one queue entry (write-through from the in-memory
// queue: the entry must survive a crash immediately after enqueue).
func (s *Store) AppendQueueEntry(e types.QueueEntry) error {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("append queue entry %s: encode: %w", e.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return types.ErrNotInitialized
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO sync_queue
		 (id, kind, action, data, timestamp, synced, endpoint, method)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, string(e.Action), string(payload), e.Timestamp,
		boolToInt(e.Synced), e.Endpoint, e.Method)
	if err != nil {
		return fmt.Errorf("append queue entry %s: %w", e.ID, err)
	}
	return nil
}

// LoadQueue returns all durable entries with synced=false, ordered by
// timestamp. Used to rehydrate the in-memory queue on startup.
func (s *Store) LoadQueue() ([]types.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, types.ErrNotInitialized
	}

	rows, err := s.db.Query(
		`SELECT id, kind, action, data, timestamp, synced, endpoint, method
		 FROM sync_queue WHERE synced = 0 ORDER BY timestamp`)
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	defer rows.Close()

	var entries []types.QueueEntry
	for rows.Next() {
		var (
			e      types.QueueEntry
			action string
			data   sql.NullString
			synced int
		)
		if err := rows.Scan(&e.ID, &e.Kind, &action, &data, &e.Timestamp,
			&synced, &e.Endpoint, &e.Method); err != nil {
			return nil, fmt.Errorf("load queue: scan: %w", err)
		}
		e.Action = types.Action(action)
		e.Synced = synced != 0
		if data.Valid && data.String != "" && data.String != "null" {
			if err := json.Unmarshal([]byte(data.String), &e.Data); err != nil {
				return nil, fmt.Errorf("load queue: decode %s: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearQueue removes every durable queue entry. Called only after the sync
// engine confirms server acknowledgment of the whole batch.
func (s *Store) ClearQueue() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return types.ErrNotInitialized
	}

	if _, err := s.db.Exec(`DELETE FROM sync_queue`); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
