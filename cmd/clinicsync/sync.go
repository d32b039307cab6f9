// Sync command submits the pending queue to the backend ("Sync Now").
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mobiclinic/clinicsync/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Submit pending mutations to the backend",
	Long: `Sync probes backend reachability, then submits every queued mutation
as one batch. On acceptance the queue is cleared; on failure it is preserved
untouched for the next attempt.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	before := c.PendingSyncCount()
	c.ProbeConnectivity(cmd.Context())

	outcome, err := c.TriggerManualSync(cmd.Context())

	if flagJSON {
		result := map[string]any{
			"outcome":      string(outcome),
			"submitted":    before,
			"pending_sync": c.PendingSyncCount(),
		}
		if err != nil {
			result["error"] = err.Error()
		}
		return printJSON(result)
	}

	switch outcome {
	case syncer.OutcomeSubmitted:
		fmt.Printf("Submitted %d pending record(s); queue cleared\n", before)
	case syncer.OutcomeSkippedEmpty:
		fmt.Println("Nothing to sync")
	case syncer.OutcomeSkippedOffline:
		fmt.Println("Backend unreachable; queue preserved")
	case syncer.OutcomeSkippedInFlight:
		fmt.Println("A sync is already in progress")
	case syncer.OutcomeFailed:
		fmt.Printf("Sync failed; %d record(s) preserved for retry\n", c.PendingSyncCount())
	}
	return err
}
