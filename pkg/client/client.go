// Package client is the single entry point for UI collaborators: cached
// entity reads, write-through saves that queue while offline, connectivity
// status, pending-sync counts, and manual sync triggers.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mobiclinic/clinicsync/internal/device"
	"github.com/mobiclinic/clinicsync/internal/netmon"
	"github.com/mobiclinic/clinicsync/internal/queue"
	"github.com/mobiclinic/clinicsync/internal/rest"
	"github.com/mobiclinic/clinicsync/internal/store"
	"github.com/mobiclinic/clinicsync/internal/syncer"
	"github.com/mobiclinic/clinicsync/pkg/types"
)

// Options configures a Client. The zero value yields a client with no
// durable storage and no backend, useful only for tests.
type Options struct {
	// Config supplies the data directory and backend base URL.
	Config types.Config

	// Token supplies the current bearer token for sync and hydration
	// requests. May be nil; absence of a token is not a local error.
	Token func() string

	// HTTPClient overrides the transport for sync, hydration, and probes.
	HTTPClient *http.Client

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client wires the local store, connectivity monitor, sync queue, sync
// engine, and device identity behind one facade. Construct one per process
// at startup and inject it into every collaborator; fresh instances per test
// give isolation.
type Client struct {
	cfg     types.Config
	store   *store.Store
	queue   *queue.Queue
	monitor *netmon.Monitor
	ids     *device.Identity
	engine  *syncer.Engine
	rest    *rest.Client
	logger  *slog.Logger

	initialized bool
}

// New assembles a Client. No I/O happens here; call EnsureInitialized to
// open storage and rehydrate the queue.
func New(opts Options) (*Client, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	st := store.New(logger)
	q := queue.New(st, logger)
	ids := device.New(st, logger)

	probeURL := ""
	if opts.Config.BaseURL != "" {
		probeURL = strings.TrimRight(opts.Config.BaseURL, "/") + "/health"
	}
	monitor := netmon.New(probeURL, opts.HTTPClient, logger)

	token := opts.Token
	engine := syncer.New(q, monitor, ids, opts.Config.SyncURL(),
		syncer.TokenFunc(token), opts.HTTPClient, logger)

	var restToken rest.TokenFunc
	if token != nil {
		restToken = rest.TokenFunc(token)
	}

	return &Client{
		cfg:     opts.Config,
		store:   st,
		queue:   q,
		monitor: monitor,
		ids:     ids,
		engine:  engine,
		rest:    rest.New(opts.Config.BaseURL, restToken, opts.HTTPClient, logger),
		logger:  logger,
	}, nil
}

// EnsureInitialized opens durable storage and rehydrates the pending queue.
// Idempotent; a second call never disturbs existing data. An environment
// without usable storage leaves the client in a degraded in-memory mode
// rather than failing.
func (c *Client) EnsureInitialized() error {
	if c.initialized {
		return nil
	}
	if err := c.store.Initialize(c.cfg.DataDir); err != nil {
		return fmt.Errorf("ensure initialized: %w", err)
	}
	if err := c.queue.Rehydrate(); err != nil {
		return fmt.Errorf("ensure initialized: %w", err)
	}
	c.initialized = true
	return nil
}

// Close releases the store. The client is unusable afterwards.
func (c *Client) Close() error {
	c.initialized = false
	return c.store.Close()
}

// SaveEntity writes the record through to the local store. While offline the
// mutation is also queued for later reconciliation. Errors are returned,
// never panicked, and a failed durable write while offline still leaves the
// mutation queued in memory.
func (c *Client) SaveEntity(kind string, rec types.Record) error {
	if !types.KnownKind(kind) {
		return fmt.Errorf("save entity: %w: %q", types.ErrKindUnknown, kind)
	}

	err := c.store.Put(kind, rec)

	if !c.monitor.Online() {
		if _, qerr := c.queue.Enqueue(types.QueueEntry{
			Kind:   kind,
			Action: types.ActionCreate,
			Data:   rec,
		}); qerr != nil {
			return fmt.Errorf("save entity: queue: %w", qerr)
		}
	}

	if err != nil {
		return fmt.Errorf("save entity: %w", err)
	}
	return nil
}

// QueueOperation appends an explicit mutation to the sync queue regardless
// of connectivity, for callers deferring work on purpose. Optional id and
// endpoint/method transport hints pass through to the entry. Returns the
// entry id.
func (c *Client) QueueOperation(kind string, action types.Action, rec types.Record,
	id, endpoint, method string) (string, error) {
	if !types.KnownKind(kind) {
		return "", fmt.Errorf("queue operation: %w: %q", types.ErrKindUnknown, kind)
	}
	opID, err := c.queue.Enqueue(types.QueueEntry{
		ID:       id,
		Kind:     kind,
		Action:   action,
		Data:     rec,
		Endpoint: endpoint,
		Method:   method,
	})
	if err != nil {
		return "", fmt.Errorf("queue operation: %w", err)
	}
	return opID, nil
}

// ReadAll returns every cached record of the kind.
func (c *Client) ReadAll(kind string) ([]types.Record, error) {
	return c.store.GetAll(kind)
}

// ReadOne returns one cached record, or types.ErrNotFound.
func (c *Client) ReadOne(kind, id string) (types.Record, error) {
	return c.store.GetByID(kind, id)
}

// IsOnline reports the monitor's current status.
func (c *Client) IsOnline() bool {
	return c.monitor.Online()
}

// SetOnline feeds a connectivity signal into the monitor. The
// offline-to-online edge triggers a background sync submission.
func (c *Client) SetOnline(online bool) {
	c.monitor.SetOnline(online)
}

// ProbeConnectivity actively checks backend reachability and updates the
// monitor accordingly.
func (c *Client) ProbeConnectivity(ctx context.Context) bool {
	return c.monitor.Probe(ctx)
}

// PendingSyncCount reports how many mutations await acknowledgment.
func (c *Client) PendingSyncCount() int {
	return c.queue.PendingCount()
}

// PendingEntries returns a copy of the queued mutations for display.
func (c *Client) PendingEntries() []types.QueueEntry {
	return c.queue.Entries()
}

// TriggerManualSync submits the pending queue now ("Sync Now"). The outcome
// distinguishes a real submission from the guard skips.
func (c *Client) TriggerManualSync(ctx context.Context) (syncer.Outcome, error) {
	return c.engine.SubmitPending(ctx)
}

// DeviceID returns the stable per-installation identifier.
func (c *Client) DeviceID() string {
	return c.ids.EnsureDeviceID()
}

// Refresh pulls the kind's records from the backend into the local store and
// returns how many were cached. Requires connectivity; offline calls fail
// fast with types.ErrOffline.
func (c *Client) Refresh(ctx context.Context, kind string) (int, error) {
	if !c.monitor.Online() {
		return 0, fmt.Errorf("refresh %s: %w", kind, types.ErrOffline)
	}

	records, err := c.rest.List(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("refresh %s: %w", kind, err)
	}

	cached := 0
	for _, rec := range records {
		if err := c.store.Put(kind, rec); err != nil {
			c.logger.Warn("refresh: record not cached", "kind", kind, "error", err)
			continue
		}
		cached++
	}
	return cached, nil
}
