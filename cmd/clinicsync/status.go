// Status command reports connectivity, device identity, and queue depth.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity and pending-sync status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	online := c.ProbeConnectivity(cmd.Context())
	pending := c.PendingSyncCount()

	if flagJSON {
		return printJSON(map[string]any{
			"online":       online,
			"pending_sync": pending,
			"device_id":    c.DeviceID(),
		})
	}

	state := "offline"
	if online {
		state = "online"
	}
	fmt.Printf("Backend: %s\n", state)
	fmt.Printf("Pending sync: %d\n", pending)
	fmt.Printf("Device id: %s\n", c.DeviceID())
	return nil
}
