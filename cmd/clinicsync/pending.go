// Pending command lists the queued mutations awaiting sync.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List mutations queued for sync",
	RunE:  runPending,
}

func runPending(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	entries := c.PendingEntries()

	if flagJSON {
		return printJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No pending mutations")
		return nil
	}
	for _, e := range entries {
		when := time.UnixMilli(e.Timestamp).Format(time.RFC3339)
		fmt.Printf("%-14s %-7s %-30s %s\n", e.Kind, e.Action, e.ID, when)
	}
	fmt.Printf("%d pending mutation(s)\n", len(entries))
	return nil
}
