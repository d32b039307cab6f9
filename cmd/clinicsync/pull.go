// Pull command hydrates the local cache from the backend.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mobiclinic/clinicsync/pkg/types"
)

var pullAll bool

var pullCmd = &cobra.Command{
	Use:   "pull [kind]",
	Short: "Fetch backend records into the local cache",
	Long: `Pull fetches records from the backend and stores them locally so they
remain readable while disconnected. Name one kind, or use --all.

Example:
  clinicsync pull patients
  clinicsync pull --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPull,
}

func init() {
	pullCmd.Flags().BoolVar(&pullAll, "all", false, "pull every entity kind")
}

func runPull(cmd *cobra.Command, args []string) error {
	var kinds []string
	switch {
	case pullAll && len(args) > 0:
		return fmt.Errorf("--all and a kind argument are mutually exclusive")
	case pullAll:
		kinds = types.StandardKinds
	case len(args) == 1:
		if !types.KnownKind(args[0]) {
			return fmt.Errorf("unknown kind %q (one of: patients, routes, inventory, appointments)", args[0])
		}
		kinds = args[:1]
	default:
		return fmt.Errorf("name a kind or use --all")
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	counts := make(map[string]int, len(kinds))
	for _, kind := range kinds {
		n, err := c.Refresh(cmd.Context(), kind)
		if err != nil {
			return fmt.Errorf("pull %s: %w", kind, err)
		}
		counts[kind] = n
	}

	if flagJSON {
		return printJSON(counts)
	}
	for _, kind := range kinds {
		fmt.Printf("Cached %d %s record(s)\n", counts[kind], kind)
	}
	return nil
}
