// Package device produces the stable per-installation identifier that tags
// sync submissions so the server can attribute and deduplicate by origin.
package device

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mobiclinic/clinicsync/internal/store"
)

// SettingKey is the settings-table key holding the persisted identifier.
const SettingKey = "device_id"

// Identity lazily generates and caches one device identifier, persisting it
// in the store's settings table. When durable storage is unavailable the
// identifier still exists for the current process lifetime; it just will not
// survive a restart. That degradation is accepted, never an error.
type Identity struct {
	st     *store.Store
	logger *slog.Logger

	mu     sync.Mutex
	cached string
}

// New creates an Identity backed by st.
func New(st *store.Store, logger *slog.Logger) *Identity {
	if logger == nil {
		logger = slog.Default()
	}
	return &Identity{st: st, logger: logger}
}

// EnsureDeviceID returns the installation's identifier, generating and
// persisting one on first call. Subsequent calls return the cached value.
func (d *Identity) EnsureDeviceID() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != "" {
		return d.cached
	}

	if existing, err := d.st.GetSetting(SettingKey); err == nil && existing != "" {
		d.cached = existing
		return d.cached
	}

	d.cached = generate(d.logger)

	if err := d.st.PutSetting(SettingKey, d.cached); err != nil {
		d.logger.Warn("device id not persisted, stable for this process only",
			"error", err)
	}
	return d.cached
}

// generate prefers a cryptographically random UUID. Without a secure random
// source it falls back to a timestamp plus pseudo-random suffix, which is
// unique enough for per-install attribution.
func generate(logger *slog.Logger) string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	logger.Warn("secure random unavailable, using degraded device id", "error", err)
	return fmt.Sprintf("dev-%d-%08x", time.Now().UnixMilli(), rand.Uint32())
}
