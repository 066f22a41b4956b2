package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprintlens/sprintlens/internal/infrastructure/store"
	"github.com/sprintlens/sprintlens/internal/infrastructure/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <snapshot.json>",
	Short: "Re-run analysis whenever a snapshot file changes",
	Long: `Watch a snapshot file and re-run analysis and report generation on
every content change. Rewrites that do not change the content are
skipped. Runs until interrupted.

Examples:
  sprintlens watch board.json
  sprintlens watch board.json --debounce 2s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatchCmd,
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServices()
	if err != nil {
		return err
	}
	if err := services.Store.Initialize(); err != nil {
		return err
	}

	path := args[0]
	opts := reportOptions(services.Settings.Report)

	onChange := func(p string) {
		raw, err := store.ReadSnapshotFile(p)
		if err != nil {
			printResultText(analyzeItem{Source: p, Err: err})
			return
		}

		result, err := services.Analysis.Analyze(raw)
		printResultText(analyzeItem{Source: p, Result: result, Err: err})

		report := services.Report.Render(raw, opts)
		name := store.ReportName(raw.BoardID)
		if reportPath, err := services.Store.SaveReport(name, report); err != nil {
			fmt.Printf("Failed to write report: %v\n", err)
		} else {
			fmt.Printf("Report updated: %s\n", reportPath)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s for changes...\n", path)

	w := watch.New(path, watchDebounce, onChange, services.Logger)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"Quiet window before a change triggers a rerun")
	RootCmd.AddCommand(watchCmd)
}
