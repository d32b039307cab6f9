package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobiclinic/clinicsync/internal/syncer"
	"github.com/mobiclinic/clinicsync/pkg/types"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Options{Config: types.Config{
		DataDir: t.TempDir(),
		BaseURL: baseURL,
	}})
	require.NoError(t, err)
	require.NoError(t, c.EnsureInitialized())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSaveEntity_OnlineWritesThroughWithoutQueuing(t *testing.T) {
	c := newTestClient(t, "")

	require.NoError(t, c.SaveEntity(types.KindPatients,
		types.Record{"id": "PAT-1", "name": "Jane Doe"}))

	rec, err := c.ReadOne(types.KindPatients, "PAT-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", rec["name"])
	assert.Equal(t, 0, c.PendingSyncCount())
}

func TestSaveEntity_OfflineQueuesExactlyOne(t *testing.T) {
	c := newTestClient(t, "")
	c.SetOnline(false)

	before := c.PendingSyncCount()
	require.NoError(t, c.SaveEntity(types.KindPatients,
		types.Record{"id": "PAT-1", "name": "Jane Doe"}))
	assert.Equal(t, before+1, c.PendingSyncCount())

	entries := c.PendingEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, types.Record{"id": "PAT-1", "name": "Jane Doe"}, entries[0].Data)
	assert.Equal(t, types.ActionCreate, entries[0].Action)
}

func TestSaveEntity_UnknownKind(t *testing.T) {
	c := newTestClient(t, "")
	err := c.SaveEntity("visits", types.Record{"id": "V-1"})
	assert.ErrorIs(t, err, types.ErrKindUnknown)
}

func TestReadOne_NotFoundIsExplicit(t *testing.T) {
	c := newTestClient(t, "")
	_, err := c.ReadOne(types.KindPatients, "PAT-404")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestWriteThroughDurability_AcrossRestart(t *testing.T) {
	dir := t.TempDir()

	c, err := New(Options{Config: types.Config{DataDir: dir}})
	require.NoError(t, err)
	require.NoError(t, c.EnsureInitialized())
	require.NoError(t, c.SaveEntity(types.KindPatients,
		types.Record{"id": "PAT-1", "name": "Jane Doe"}))
	require.NoError(t, c.Close())

	// Simulated process restart over the same data directory.
	c2, err := New(Options{Config: types.Config{DataDir: dir}})
	require.NoError(t, err)
	require.NoError(t, c2.EnsureInitialized())
	defer c2.Close()

	rec, err := c2.ReadOne(types.KindPatients, "PAT-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", rec["name"])
}

func TestOfflineQueue_RehydratedAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	c, err := New(Options{Config: types.Config{DataDir: dir}})
	require.NoError(t, err)
	require.NoError(t, c.EnsureInitialized())
	c.SetOnline(false)
	require.NoError(t, c.SaveEntity(types.KindRoutes,
		types.Record{"id": "RT-1", "name": "Northern loop"}))
	require.NoError(t, c.Close())

	c2, err := New(Options{Config: types.Config{DataDir: dir}})
	require.NoError(t, err)
	require.NoError(t, c2.EnsureInitialized())
	defer c2.Close()

	assert.Equal(t, 1, c2.PendingSyncCount())
}

func TestDeviceID_StableAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	c, err := New(Options{Config: types.Config{DataDir: dir}})
	require.NoError(t, err)
	require.NoError(t, c.EnsureInitialized())
	first := c.DeviceID()
	require.NoError(t, c.Close())

	c2, err := New(Options{Config: types.Config{DataDir: dir}})
	require.NoError(t, err)
	require.NoError(t, c2.EnsureInitialized())
	defer c2.Close()

	assert.Equal(t, first, c2.DeviceID())
}

// Offline save, reconnect, manual sync with a 200 backend, queue drains.
func TestOfflineSaveThenSyncDrainsQueue(t *testing.T) {
	var got types.Envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sync/pending" {
			w.WriteHeader(http.StatusOK)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.SetOnline(false)

	require.NoError(t, c.SaveEntity(types.KindPatients,
		types.Record{"id": "PAT-1", "name": "Jane Doe"}))
	require.Equal(t, 1, c.PendingSyncCount())

	c.SetOnline(true)

	// The reconnect edge already fires a background submission; the manual
	// trigger either submits or is absorbed by the single-flight guard.
	_, err := c.TriggerManualSync(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return c.PendingSyncCount() == 0 },
		2*time.Second, 10*time.Millisecond)
	assert.Equal(t, c.DeviceID(), got.DeviceID)
}

// Two kinds saved offline produce two payload-free transport records.
func TestSnapshotForTransport_TwoKindsNoPayload(t *testing.T) {
	c := newTestClient(t, "")
	c.SetOnline(false)

	require.NoError(t, c.SaveEntity(types.KindPatients,
		types.Record{"id": "PAT-1", "name": "Jane Doe"}))
	require.NoError(t, c.SaveEntity(types.KindRoutes,
		types.Record{"id": "RT-1", "name": "Northern loop"}))

	entries := c.PendingEntries()
	require.Len(t, entries, 2)

	raw, err := json.Marshal(types.Envelope{
		DeviceID: c.DeviceID(),
		Records:  []types.TransportRecord{entries[0].AsTransport(), entries[1].AsTransport()},
	})
	require.NoError(t, err)

	var decoded types.Envelope
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Records, 2)
	assert.Equal(t, types.KindPatients, decoded.Records[0].TableName)
	assert.Equal(t, types.KindRoutes, decoded.Records[1].TableName)
	assert.NotContains(t, string(raw), `"data"`)
	assert.NotContains(t, string(raw), "Jane Doe")
}

// A backend that always fails leaves the queue at full strength.
func TestSyncFailure_PreservesQueueAcrossAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.SetOnline(false)
	require.NoError(t, c.SaveEntity(types.KindPatients, types.Record{"id": "PAT-1"}))
	require.NoError(t, c.SaveEntity(types.KindPatients, types.Record{"id": "PAT-2"}))
	c.SetOnline(true)

	for i := 0; i < 3; i++ {
		outcome, err := c.TriggerManualSync(context.Background())
		if outcome == syncer.OutcomeFailed {
			assert.Error(t, err)
		}
	}
	// Give the reconnect-triggered background attempt time to fail too.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, c.PendingSyncCount())
}

func TestQueueOperation_ExplicitWithOverrides(t *testing.T) {
	c := newTestClient(t, "")

	id, err := c.QueueOperation(types.KindAppointments, types.ActionDelete,
		types.Record{"id": "APT-9"}, "", "/appointments/APT-9/cancel", http.MethodPost)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries := c.PendingEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "/appointments/APT-9/cancel", entries[0].Endpoint)
	assert.Equal(t, http.MethodPost, entries[0].Method)
	assert.Equal(t, types.ActionDelete, entries[0].Action)
}

func TestRefresh_HydratesLocalStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/patients", r.URL.Path)
		w.Write([]byte(`[{"id":"PAT-1","name":"Jane Doe"},{"id":"PAT-2","name":"John Roe"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	n, err := c.Refresh(context.Background(), types.KindPatients)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := c.ReadAll(types.KindPatients)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRefresh_OfflineFailsFast(t *testing.T) {
	c := newTestClient(t, "")
	c.SetOnline(false)

	_, err := c.Refresh(context.Background(), types.KindPatients)
	assert.ErrorIs(t, err, types.ErrOffline)
}

func TestEnsureInitialized_Idempotent(t *testing.T) {
	c := newTestClient(t, "")

	require.NoError(t, c.SaveEntity(types.KindPatients, types.Record{"id": "PAT-1"}))
	require.NoError(t, c.EnsureInitialized())

	_, err := c.ReadOne(types.KindPatients, "PAT-1")
	assert.NoError(t, err)
}

func TestDegradedEnvironment_NeverCrashes(t *testing.T) {
	c, err := New(Options{Config: types.Config{DataDir: ""}})
	require.NoError(t, err)
	require.NoError(t, c.EnsureInitialized())

	err = c.SaveEntity(types.KindPatients, types.Record{"id": "PAT-1"})
	assert.ErrorIs(t, err, types.ErrNotInitialized)

	// Offline saves still queue in memory even without durable storage.
	c.SetOnline(false)
	_ = c.SaveEntity(types.KindPatients, types.Record{"id": "PAT-2"})
	assert.Equal(t, 1, c.PendingSyncCount())

	assert.NotEmpty(t, c.DeviceID())
}
