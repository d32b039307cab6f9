// Init command bootstraps the local store and device identity.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local store",
	Long: `Init creates the local store database (tables for patients, routes,
inventory, appointments, the sync queue, and settings) and assigns the
installation its device identifier. Safe to run repeatedly: existing data is
never touched.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(map[string]string{
			"data_dir":  dataDir,
			"device_id": c.DeviceID(),
		})
	}

	fmt.Printf("Local store ready in %s\n", dataDir)
	fmt.Printf("Device id: %s\n", c.DeviceID())
	return nil
}
