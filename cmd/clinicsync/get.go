// Get command shows one cached record.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mobiclinic/clinicsync/pkg/types"
)

var getCmd = &cobra.Command{
	Use:   "get <kind> <id>",
	Short: "Show one cached record",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	kind, id := args[0], args[1]
	if !types.KnownKind(kind) {
		return fmt.Errorf("unknown kind %q (one of: patients, routes, inventory, appointments)", kind)
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	rec, err := c.ReadOne(kind, id)
	if errors.Is(err, types.ErrNotFound) {
		return fmt.Errorf("no cached %s record with id %q", kind, id)
	}
	if err != nil {
		return err
	}

	return printJSON(rec)
}
