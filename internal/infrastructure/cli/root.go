package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Persistent flag variables shared by all commands
var (
	configPath string
	verbose    bool
	logFormat  string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "sprintlens",
	Version: Version,
	Short:   "Sprint health metrics and risk analysis for project boards",
	Long: `Sprintlens reads a project board snapshot (Trello, GitHub Issues, Jira,
or a saved JSON file) and computes sprint health metrics: completion
rate, blockers, deadlines, team workload, process bottlenecks, risks,
and recommendations.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the settings file (default .sprintlens/settings.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Log output format (text or json)")
}
