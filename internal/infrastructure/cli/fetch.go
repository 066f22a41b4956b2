package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprintlens/sprintlens/internal/infrastructure/store"
)

var fetchOut string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a board snapshot from the configured source",
	Long: `Fetch a board snapshot from the configured source and write it as JSON.

Without --out the snapshot lands in the workspace snapshots directory
under its canonical name. A fetch failure still produces a snapshot
file carrying the error message, so a later analyze reports it instead
of working from stale data.

Examples:
  sprintlens fetch
  sprintlens fetch --out board.json`,
	RunE: runFetchCmd,
}

func runFetchCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServices()
	if err != nil {
		return err
	}

	if fetchOut != "" {
		snap := services.Collect.Collect(cmd.Context())
		if err := store.WriteSnapshotFile(fetchOut, snap); err != nil {
			return err
		}
		fmt.Printf("Snapshot written to %s\n", fetchOut)
		return nil
	}

	if err := services.Store.Initialize(); err != nil {
		return err
	}

	path, _, err := services.Collect.CollectAndSave(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Snapshot written to %s\n", path)
	return nil
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "",
		"Write the snapshot to this path instead of the workspace")
	RootCmd.AddCommand(fetchCmd)
}
