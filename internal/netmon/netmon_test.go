package netmon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsOnline(t *testing.T) {
	m := New("", nil, nil)
	assert.True(t, m.Online(), "monitor must fail open")
}

func TestSetOnline_FiresOncePerEdge(t *testing.T) {
	m := New("", nil, nil)

	var transitions []bool
	m.Subscribe(func(online bool) { transitions = append(transitions, online) })

	m.SetOnline(false)
	m.SetOnline(false) // bounce, same status: no edge
	m.SetOnline(true)
	m.SetOnline(true) // bounce
	m.SetOnline(false)

	assert.Equal(t, []bool{false, true, false}, transitions)
}

func TestSetOnline_MultipleSubscribersInOrder(t *testing.T) {
	m := New("", nil, nil)

	var order []string
	m.Subscribe(func(bool) { order = append(order, "first") })
	m.Subscribe(func(bool) { order = append(order, "second") })

	m.SetOnline(false)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestProbe_ReachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(srv.URL+"/health", srv.Client(), nil)
	m.SetOnline(false)

	require.True(t, m.Probe(context.Background()))
	assert.True(t, m.Online())
}

func TestProbe_UnreachableEndpointGoesOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	m := New(srv.URL+"/health", nil, nil)

	require.False(t, m.Probe(context.Background()))
	assert.False(t, m.Online())
}

func TestProbe_NoURLKeepsCurrentStatus(t *testing.T) {
	m := New("", nil, nil)
	assert.True(t, m.Probe(context.Background()))

	m.SetOnline(false)
	assert.False(t, m.Probe(context.Background()))
}

func TestProbe_ServerErrorStillOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := New(srv.URL, srv.Client(), nil)
	m.SetOnline(false)

	// A 503 is still a network response; the path is up.
	assert.True(t, m.Probe(context.Background()))
}
