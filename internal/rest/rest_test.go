package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobiclinic/clinicsync/pkg/types"
)

func TestList_BareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/patients", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"PAT-1","name":"Jane Doe"},{"id":"PAT-2","name":"John Roe"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, srv.Client(), nil)
	records, err := c.List(context.Background(), types.KindPatients)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Jane Doe", records[0]["name"])
}

func TestList_WrappedItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inventory/assets", r.URL.Path)
		w.Write([]byte(`{"items":[{"id":"INV-1","name":"BP monitor"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, srv.Client(), nil)
	records, err := c.List(context.Background(), types.KindInventory)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "BP monitor", records[0]["name"])
}

func TestList_UnknownKind(t *testing.T) {
	c := New("http://unused.invalid", nil, nil, nil)
	_, err := c.List(context.Background(), "visits")
	assert.ErrorIs(t, err, types.ErrKindUnknown)
}

func TestList_SendsBearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, func() string { return "tok-9" }, srv.Client(), nil)
	_, err := c.List(context.Background(), types.KindRoutes)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-9", auth)
}

func TestGet_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/appointments/42", r.URL.Path)
		w.Write([]byte(`{"id":42,"slot":"09:00"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, srv.Client(), nil)
	rec, err := c.Get(context.Background(), types.KindAppointments, "42")
	require.NoError(t, err)
	assert.Equal(t, "09:00", rec["slot"])
}

func TestGet_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, srv.Client(), nil)
	_, err := c.Get(context.Background(), types.KindPatients, "PAT-404")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestList_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, srv.Client(), nil)
	_, err := c.List(context.Background(), types.KindPatients)
	assert.Error(t, err)
}
