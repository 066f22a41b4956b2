package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/sprintlens/sprintlens/internal/application"
	"github.com/sprintlens/sprintlens/internal/infrastructure/config"
	"github.com/sprintlens/sprintlens/internal/infrastructure/store"
	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

// Flag variables for report command
var (
	reportOut      string
	reportSprint   string
	reportTeam     string
	reportTemplate string
	reportPreview  bool
)

var reportCmd = &cobra.Command{
	Use:   "report [snapshot.json]",
	Short: "Render a markdown sprint report",
	Long: `Render a markdown sprint report from a snapshot file, or from live
data when no file is given.

The report prints to stdout; --out writes it to a file instead, and
--preview renders the markdown for the terminal.

Flags:
  --out           Write the report to this path
  --sprint-name   Sprint name for the report header
  --team-name     Team name for the report header
  --template      Markdown template file overriding the built-in one
  --preview       Render the markdown for the terminal

Examples:
  sprintlens report board.json --sprint-name "Sprint 12"
  sprintlens report --out report.md
  sprintlens report board.json --preview`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReportCmd,
}

func runReportCmd(cmd *cobra.Command, args []string) error {
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

	report := services.Report.Render(raw, reportOptions(services.Settings.Report))

	if reportOut != "" {
		if err := os.WriteFile(reportOut, []byte(report), 0600); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", reportOut)
		if !reportPreview {
			return nil
		}
	}

	if reportPreview {
		return previewMarkdown(report)
	}
	if reportOut == "" {
		fmt.Print(report)
	}
	return nil
}

// reportOptions merges the report flags over the settings file's report
// section. Empty values fall through to the service defaults.
func reportOptions(settings config.ReportSettings) application.Options {
	opts := application.Options{
		SprintName:   reportSprint,
		TeamName:     reportTeam,
		TemplatePath: reportTemplate,
	}
	if opts.SprintName == "" {
		opts.SprintName = settings.SprintName
	}
	if opts.TeamName == "" {
		opts.TeamName = settings.TeamName
	}
	if opts.TemplatePath == "" {
		opts.TemplatePath = settings.Template
	}
	return opts
}

func previewMarkdown(md string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to build renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Print(out)
	return nil
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "",
		"Write the report to this path")
	reportCmd.Flags().StringVar(&reportSprint, "sprint-name", "",
		"Sprint name for the report header")
	reportCmd.Flags().StringVar(&reportTeam, "team-name", "",
		"Team name for the report header")
	reportCmd.Flags().StringVar(&reportTemplate, "template", "",
		"Markdown template file overriding the built-in one")
	reportCmd.Flags().BoolVar(&reportPreview, "preview", false,
		"Render the markdown for the terminal")
	RootCmd.AddCommand(reportCmd)
}
