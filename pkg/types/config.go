package types

import (
	"errors"
	"net/url"
	"strings"
)

// Config holds the parameters for opening a client: where the local store
// lives and which backend the sync engine talks to.
type Config struct {
	// DataDir is the directory holding the local store database. Empty
	// means no durable storage is available; the client degrades to
	// in-memory behavior.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// BaseURL is the backend API base, e.g. "https://clinic.example.com/api".
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// Config validation errors.
var (
	ErrBaseURLInvalid = errors.New("base_url is not a valid URL")
)

// Validate checks that the Config is well-formed. An empty BaseURL is
// accepted: the client then works purely offline and sync submissions fail
// per-call rather than at construction.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrBaseURLInvalid
	}
	return nil
}

// SyncURL returns the sync submission endpoint derived from BaseURL.
func (c Config) SyncURL() string {
	if c.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(c.BaseURL, "/") + "/sync/pending"
}
