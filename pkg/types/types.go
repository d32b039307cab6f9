// Package types defines the entity kinds, record and queue-entry types, the
// sync wire envelope, and standard errors for the clinicsync storage system.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Standard entity kinds mirrored from the backend. Each kind maps to one
// table in the local store.
const (
	KindPatients     = "patients"
	KindRoutes       = "routes"
	KindInventory    = "inventory"
	KindAppointments = "appointments"
)

// StandardKinds lists all entity kinds for enumeration and schema bootstrap.
var StandardKinds = []string{
	KindPatients,
	KindRoutes,
	KindInventory,
	KindAppointments,
}

// KnownKind reports whether name is a standard entity kind.
func KnownKind(name string) bool {
	for _, k := range StandardKinds {
		if k == name {
			return true
		}
	}
	return false
}

// Standard errors returned by the store, queue, and sync engine.
var (
	ErrNotFound       = errors.New("record not found")
	ErrNotInitialized = errors.New("store not initialized")
	ErrKindUnknown    = errors.New("unknown entity kind")
	ErrRecordNoID     = errors.New("record has no id field")
	ErrOffline        = errors.New("offline")
	ErrSyncFailed     = errors.New("sync submission failed")
)

// Record is an entity payload keyed by field name. The store treats the "id"
// field as the table key; everything else is opaque to the core. Foreign ids
// embedded in a payload are never validated here.
type Record map[string]any

// RawID returns the record's "id" value as stored, which may be a string or
// a number depending on the backend that produced it.
func (r Record) RawID() (any, bool) {
	id, ok := r["id"]
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// ID returns the record's "id" normalized to a string for use as a table key.
// Numeric ids are formatted without a decimal point where possible, so the
// backend's integer ids round-trip as "42" rather than "42.000000".
func (r Record) ID() (string, bool) {
	raw, ok := r.RawID()
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v)), true
		}
		return fmt.Sprintf("%v", v), true
	case int:
		return fmt.Sprintf("%d", v), true
	case int64:
		return fmt.Sprintf("%d", v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
