// Package syncer reconciles the pending queue with the backend: it batches
// queued mutations into one envelope, submits it over HTTP, and clears the
// queue only on confirmed acceptance.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/mobiclinic/clinicsync/internal/device"
	"github.com/mobiclinic/clinicsync/internal/netmon"
	"github.com/mobiclinic/clinicsync/internal/queue"
	"github.com/mobiclinic/clinicsync/pkg/types"
)

// Outcome describes how a SubmitPending call ended.
type Outcome string

const (
	// OutcomeSubmitted means the server accepted the batch and the queue
	// was cleared.
	OutcomeSubmitted Outcome = "submitted"

	// OutcomeFailed means the submission did not complete (network error
	// or non-2xx status); the queue is preserved for the next trigger.
	OutcomeFailed Outcome = "failed"

	// Guard outcomes: nothing was attempted.
	OutcomeSkippedOffline  Outcome = "skipped_offline"
	OutcomeSkippedEmpty    Outcome = "skipped_empty"
	OutcomeSkippedInFlight Outcome = "skipped_in_flight"
)

// TokenFunc supplies the current bearer token, or "" when none is cached.
// Token absence is not a local error; the server is the authority on auth.
type TokenFunc func() string

// Engine drives sync submissions. At most one submission is in flight at a
// time: a second trigger while one is running is dropped, not queued, and
// the next natural trigger picks up whatever is still pending.
//
// There is no retry scheduler. Failures wait for the next connectivity
// transition or explicit call.
type Engine struct {
	queue   *queue.Queue
	monitor *netmon.Monitor
	ids     *device.Identity
	syncURL string
	token   TokenFunc
	client  *http.Client
	logger  *slog.Logger

	inFlight atomic.Bool
}

// New creates an Engine and registers it with the monitor so the
// offline-to-online edge triggers a submission automatically.
func New(q *queue.Queue, m *netmon.Monitor, ids *device.Identity,
	syncURL string, token TokenFunc, client *http.Client, logger *slog.Logger) *Engine {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if token == nil {
		token = func() string { return "" }
	}
	e := &Engine{
		queue:   q,
		monitor: m,
		ids:     ids,
		syncURL: syncURL,
		token:   token,
		client:  client,
		logger:  logger,
	}

	// Each offline-to-online edge fires exactly once; the in-flight guard
	// absorbs anything else.
	m.Subscribe(func(online bool) {
		if !online {
			return
		}
		go func() {
			if _, err := e.SubmitPending(context.Background()); err != nil {
				e.logger.Warn("reconnect sync failed", "error", err)
			}
		}()
	})

	return e
}

// InFlight reports whether a submission is currently running.
func (e *Engine) InFlight() bool {
	return e.inFlight.Load()
}

// SubmitPending submits every queued mutation as one envelope.
//
// Guards, checked in order: offline, empty queue, submission already in
// flight. Each returns immediately with the matching skip outcome and no
// error.
//
// A 2xx response clears the queue atomically. Any other result leaves the
// queue untouched and returns OutcomeFailed with a diagnostic error; nothing
// here panics into the caller.
func (e *Engine) SubmitPending(ctx context.Context) (Outcome, error) {
	if !e.monitor.Online() {
		return OutcomeSkippedOffline, nil
	}
	if e.queue.PendingCount() == 0 {
		return OutcomeSkippedEmpty, nil
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return OutcomeSkippedInFlight, nil
	}
	defer e.inFlight.Store(false)

	records := e.queue.Snapshot()
	if len(records) == 0 {
		return OutcomeSkippedEmpty, nil
	}

	envelope := types.Envelope{
		DeviceID: e.ids.EnsureDeviceID(),
		Records:  records,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("encode envelope: %w", err)
	}

	if e.syncURL == "" {
		return OutcomeFailed, fmt.Errorf("submit pending: %w: no base URL configured", types.ErrSyncFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.syncURL, bytes.NewReader(body))
	if err != nil {
		return OutcomeFailed, fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := e.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn("sync submission failed", "error", err, "records", len(records))
		return OutcomeFailed, fmt.Errorf("submit pending: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Body text is diagnostic only; cap it so a misbehaving server
		// cannot balloon memory.
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		e.logger.Warn("sync rejected by server",
			"status", resp.StatusCode, "body", string(text), "records", len(records))
		return OutcomeFailed, fmt.Errorf("submit pending: %w: server returned %d",
			types.ErrSyncFailed, resp.StatusCode)
	}

	// All-or-nothing: a 2xx means the whole batch was accepted.
	if err := e.queue.Clear(); err != nil {
		// The server has the batch; re-submission later is safe because
		// the contract is idempotent per record id.
		e.logger.Warn("queue clear failed after accepted sync", "error", err)
		return OutcomeSubmitted, nil
	}

	e.logger.Info("sync submitted", "records", len(records))
	return OutcomeSubmitted, nil
}
