// Package netmon tracks online/offline state and notifies subscribers on
// each transition edge.
package netmon

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
)

// Monitor holds the current connectivity status. The status starts online:
// with no platform signal the monitor fails open, since wrongly assuming
// offline would silently queue work that did not need queuing.
//
// SetOnline is the signal entry point (host platform hooks, probes, or the
// CLI). Subscribers are invoked exactly once per edge; repeated calls with
// the same status fire nothing, so a bouncing signal cannot trigger
// duplicate submissions.
type Monitor struct {
	mu          sync.Mutex
	online      bool
	subscribers []func(online bool)

	probeURL string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a Monitor in the online state. probeURL may be empty; it is
// only needed for Probe.
func New(probeURL string, client *http.Client, logger *slog.Logger) *Monitor {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		online:   true,
		probeURL: probeURL,
		client:   client,
		logger:   logger,
	}
}

// Online returns the current status.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a status change. Subscribers run synchronously, in
// registration order, only when the status actually flips.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()

	m.logger.Info("connectivity changed", "online", online)
	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers fn to run on every future transition edge.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Probe checks reachability of the configured probe URL and feeds the result
// into SetOnline. With no probe URL the current status is returned unchanged
// (fail open). Probe never returns an error: an unreachable endpoint simply
// means offline.
func (m *Monitor) Probe(ctx context.Context) bool {
	if m.probeURL == "" {
		return m.Online()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		m.logger.Warn("probe request build failed", "url", m.probeURL, "error", err)
		return m.Online()
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.SetOnline(false)
		return false
	}
	resp.Body.Close()

	// Any response at all proves the network path; the status code is the
	// server's concern.
	m.SetOnline(true)
	return true
}
