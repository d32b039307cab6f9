// Package rest is a thin read client for the backend's entity endpoints,
// used to hydrate the local store while online. Authentication and data
// semantics stay on the server side; this client only moves records.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mobiclinic/clinicsync/pkg/types"
)

// kindPaths maps entity kinds to their backend list endpoints.
var kindPaths = map[string]string{
	types.KindPatients:     "/patients",
	types.KindRoutes:       "/routes",
	types.KindAppointments: "/appointments",
	types.KindInventory:    "/inventory/assets",
}

// TokenFunc supplies the current bearer token, or "" when none is cached.
type TokenFunc func() string

// Client fetches entity records from the backend REST API.
type Client struct {
	baseURL string
	token   TokenFunc
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client for the given API base URL.
func New(baseURL string, token TokenFunc, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    client,
		logger:  logger,
	}
}

// List fetches all records of the given kind.
func (c *Client) List(ctx context.Context, kind string) ([]types.Record, error) {
	path, ok := kindPaths[kind]
	if !ok {
		return nil, fmt.Errorf("list %q: %w", kind, types.ErrKindUnknown)
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("list %s: no base URL configured", kind)
	}

	body, err := c.get(ctx, c.baseURL+path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return decodeRecords(body)
}

// Get fetches one record by id, mapping a server 404 to types.ErrNotFound.
func (c *Client) Get(ctx context.Context, kind, id string) (types.Record, error) {
	path, ok := kindPaths[kind]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", kind, types.ErrKindUnknown)
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("get %s: no base URL configured", kind)
	}

	body, err := c.get(ctx, c.baseURL+path+"/"+id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", kind, id, err)
	}

	var rec types.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("get %s/%s: decode: %w", kind, id, err)
	}
	return rec, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, types.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("backend request failed",
			"url", url, "status", resp.StatusCode, "body", string(text))
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// decodeRecords accepts either a bare JSON array or an object wrapping the
// array under "items" or "data", which is how the backend pages some lists.
func decodeRecords(body []byte) ([]types.Record, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var records []types.Record
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return records, nil
	}

	var wrapper struct {
		Items []types.Record `json:"items"`
		Data  []types.Record `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if wrapper.Items != nil {
		return wrapper.Items, nil
	}
	return wrapper.Data, nil
}
