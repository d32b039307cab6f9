// Save command writes a record into the local store, optionally queueing it
// for deferred sync.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mobiclinic/clinicsync/pkg/types"
)

var (
	saveData  string
	saveFile  string
	saveQueue bool
)

var saveCmd = &cobra.Command{
	Use:   "save <kind>",
	Short: "Save a record into the local store",
	Long: `Save writes a JSON record into the named entity table. With --queue the
mutation is also appended to the sync queue for later submission, the same
path a disconnected workstation takes.

Example:
  clinicsync save patients --data '{"id":"PAT-1","name":"Jane Doe"}'
  clinicsync save routes --file route.json --queue`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVar(&saveData, "data", "", "record as inline JSON")
	saveCmd.Flags().StringVar(&saveFile, "file", "", "path to a JSON record file")
	saveCmd.Flags().BoolVar(&saveQueue, "queue", false, "also queue the mutation for sync")
}

func runSave(cmd *cobra.Command, args []string) error {
	kind := args[0]
	if !types.KnownKind(kind) {
		return fmt.Errorf("unknown kind %q (one of: patients, routes, inventory, appointments)", kind)
	}

	rec, err := readRecordArg(saveData, saveFile)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SaveEntity(kind, rec); err != nil {
		return err
	}

	var opID string
	if saveQueue {
		opID, err = c.QueueOperation(kind, types.ActionCreate, rec, "", "", "")
		if err != nil {
			return err
		}
	}

	id, _ := rec.ID()
	if flagJSON {
		out := map[string]any{"kind": kind, "id": id}
		if opID != "" {
			out["queued_op"] = opID
		}
		return printJSON(out)
	}

	fmt.Printf("Saved %s/%s\n", kind, id)
	if opID != "" {
		fmt.Printf("Queued for sync as %s\n", opID)
	}
	return nil
}
