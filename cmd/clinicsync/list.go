// List command shows cached records of one kind.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mobiclinic/clinicsync/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list <kind>",
	Short: "List cached records of a kind",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	kind := args[0]
	if !types.KnownKind(kind) {
		return fmt.Errorf("unknown kind %q (one of: patients, routes, inventory, appointments)", kind)
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	records, err := c.ReadAll(kind)
	if err != nil {
		return err
	}

	if flagJSON {
		if records == nil {
			records = []types.Record{}
		}
		return printJSON(records)
	}

	for _, rec := range records {
		id, _ := rec.ID()
		name, _ := rec["name"].(string)
		fmt.Printf("%-20s %s\n", id, name)
	}
	fmt.Printf("%d record(s) in %s\n", len(records), kind)
	return nil
}
