// Shared helpers for subcommands: client construction and output modes.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mobiclinic/clinicsync/pkg/client"
	"github.com/mobiclinic/clinicsync/pkg/types"
)

// newClient builds an initialized facade from the resolved configuration.
// Callers must Close it.
func newClient() (*client.Client, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	c, err := client.New(client.Options{
		Config: types.Config{
			DataDir: dataDir,
			BaseURL: resolveBaseURL(),
		},
		Token: resolveToken,
	})
	if err != nil {
		return nil, err
	}
	if err := c.EnsureInitialized(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readRecordArg parses a record from --data JSON or a --file path; exactly
// one must be provided.
func readRecordArg(data, file string) (types.Record, error) {
	var raw []byte
	switch {
	case data != "" && file != "":
		return nil, fmt.Errorf("--data and --file are mutually exclusive")
	case data != "":
		raw = []byte(data)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		raw = b
	default:
		return nil, fmt.Errorf("one of --data or --file is required")
	}

	var rec types.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return rec, nil
}
