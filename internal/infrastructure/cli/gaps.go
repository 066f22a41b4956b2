package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprintlens/sprintlens/internal/infrastructure/store"
	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

var gapsOutput string

var gapsCmd = &cobra.Command{
	Use:   "gaps [snapshot.json]",
	Short: "List cards with missing fields",
	Long: `Scan a board snapshot for cards missing the fields the analysis
leans on: due dates on incomplete cards, descriptions, and assigned
members. Reads a snapshot file, or fetches live data when no file is
given.

Examples:
  sprintlens gaps board.json
  sprintlens gaps --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGapsCmd,
}

func runGapsCmd(cmd *cobra.Command, args []string) error {
	if gapsOutput != outputJSON && gapsOutput != outputText {
		return fmt.Errorf("unknown output format %q (expected json or text)", gapsOutput)
	}

	services, err := loadServices()
	if err != nil {
		return err
	}

	var raw *board.RawSnapshot
	if len(args) > 0 {
		raw, err = store.ReadSnapshotFile(args[0])
		if err != nil {
			return err
		}
	} else {
		raw = services.Collect.Collect(cmd.Context())
	}

	snap, err := board.NewNormalizer(services.Logger).Normalize(raw)
	if err != nil {
		return err
	}

	gaps := board.ScanGaps(snap.Cards)

	if gapsOutput == outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(gaps)
	}

	if len(gaps) == 0 {
		fmt.Println("No data gaps found.")
		return nil
	}

	fmt.Println(sectionStyle.Render(fmt.Sprintf("Data gaps in %d of %d cards", len(gaps), len(snap.Cards))))
	for _, g := range gaps {
		name := g.CardName
		if name == "" {
			name = g.CardID
		}
		fmt.Printf("  %s (in %s)\n", name, g.ListName)
		for _, warning := range g.Gaps {
			fmt.Printf("    - %s\n", warning)
		}
	}
	return nil
}

func init() {
	gapsCmd.Flags().StringVar(&gapsOutput, "output", outputText,
		"Output format (text or json)")
	RootCmd.AddCommand(gapsCmd)
}
