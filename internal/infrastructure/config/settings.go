// Package config loads the sprintlens settings file and applies environment
// fallbacks for credentials. Every section is optional; missing values fall
// back to defaults so a bare workspace still analyzes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sprintlens/sprintlens/internal/application"
	"github.com/sprintlens/sprintlens/pkg/domain/analytics"
	"github.com/sprintlens/sprintlens/pkg/domain/flow"
	"github.com/sprintlens/sprintlens/pkg/domain/metrics"
	"github.com/sprintlens/sprintlens/pkg/domain/risk"
	"github.com/sprintlens/sprintlens/pkg/domain/team"
)

// SettingsFile is the default settings file name inside the workspace.
const SettingsFile = "settings.yaml"

// DefaultWorkspace is the workspace directory created next to the board data.
const DefaultWorkspace = ".sprintlens"

// Source names accepted in Settings.Source.
const (
	SourceTrello = "trello"
	SourceGitHub = "github"
	SourceJira   = "jira"
	SourceFile   = "file"
)

// TrelloSettings carries Trello API credentials and the board to fetch.
type TrelloSettings struct {
	APIKey   string `yaml:"api_key"`
	APIToken string `yaml:"api_token"`
	BoardID  string `yaml:"board_id"`
}

// GitHubSettings carries the token and repository for the issues source.
type GitHubSettings struct {
	Token string `yaml:"token"`
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// JiraSettings carries the Jira cloud credentials and project.
type JiraSettings struct {
	Domain     string `yaml:"domain"`
	Email      string `yaml:"email"`
	APIToken   string `yaml:"api_token"`
	ProjectKey string `yaml:"project_key"`
}

// FileSettings points the file source at a stored snapshot.
type FileSettings struct {
	Path string `yaml:"path"`
}

// AnalysisSettings tunes the analysis pipeline thresholds.
type AnalysisSettings struct {
	ApproachingWindowDays  int     `yaml:"approaching_window_days"`
	HighWorkloadRatio      float64 `yaml:"high_workload_ratio"`
	BottleneckRatio        float64 `yaml:"bottleneck_ratio"`
	LowCompletionRate      float64 `yaml:"low_completion_rate"`
	CriticalCompletionRate float64 `yaml:"critical_completion_rate"`
	BlockerHighCount       int     `yaml:"blocker_high_count"`
	OverdueHighCount       int     `yaml:"overdue_high_count"`
	BottleneckHighRatio    float64 `yaml:"bottleneck_high_ratio"`
	SprintLengthDays       int     `yaml:"sprint_length_days"`
	CheckpointDay          int     `yaml:"checkpoint_day"`
}

// ReportSettings carries the report header fields and template override.
type ReportSettings struct {
	SprintName string `yaml:"sprint_name"`
	TeamName   string `yaml:"team_name"`
	Template   string `yaml:"template"`
}

// LoggingSettings selects the log level and handler format.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Settings is the full settings file shape.
type Settings struct {
	Source    string           `yaml:"source"`
	Trello    TrelloSettings   `yaml:"trello"`
	GitHub    GitHubSettings   `yaml:"github"`
	Jira      JiraSettings     `yaml:"jira"`
	File      FileSettings     `yaml:"file"`
	Analysis  AnalysisSettings `yaml:"analysis"`
	Report    ReportSettings   `yaml:"report"`
	Logging   LoggingSettings  `yaml:"logging"`
	Workspace string           `yaml:"workspace"`
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Source: SourceTrello,
		Analysis: AnalysisSettings{
			ApproachingWindowDays:  metrics.DefaultApproachingWindowDays,
			HighWorkloadRatio:      team.DefaultHighWorkloadRatio,
			BottleneckRatio:        flow.DefaultBottleneckRatio,
			LowCompletionRate:      70,
			CriticalCompletionRate: 50,
			BlockerHighCount:       2,
			OverdueHighCount:       3,
			BottleneckHighRatio:    2.0,
			SprintLengthDays:       analytics.DefaultSprintDays,
			CheckpointDay:          analytics.DefaultCheckpointDay,
		},
		Report: ReportSettings{
			SprintName: "Current Sprint",
			TeamName:   "Development Team",
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
		Workspace: DefaultWorkspace,
	}
}

// Load reads settings from path. A missing file yields the defaults; a
// present but malformed file is an error. Credentials left empty are filled
// from the environment afterwards.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			settings.applyEnv()
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	settings.applyEnv()
	return settings, nil
}

// Save writes the settings to path.
func Save(path string, settings *Settings) error {
	if settings == nil {
		return fmt.Errorf("settings is nil")
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// applyEnv fills empty credential fields from the environment.
func (s *Settings) applyEnv() {
	fillEnv(&s.Trello.APIKey, "TRELLO_API_KEY")
	fillEnv(&s.Trello.APIToken, "TRELLO_API_TOKEN")
	fillEnv(&s.Trello.BoardID, "TRELLO_BOARD_ID")
	fillEnv(&s.GitHub.Token, "GITHUB_TOKEN")
	fillEnv(&s.Jira.Domain, "JIRA_DOMAIN")
	fillEnv(&s.Jira.Email, "JIRA_EMAIL")
	fillEnv(&s.Jira.APIToken, "JIRA_API_TOKEN")
	fillEnv(&s.Jira.ProjectKey, "JIRA_PROJECT_KEY")
}

func fillEnv(target *string, key string) {
	if *target == "" {
		*target = os.Getenv(key)
	}
}

// AnalysisConfig maps the settings to the pipeline knobs.
func (s *Settings) AnalysisConfig() application.AnalysisConfig {
	return application.AnalysisConfig{
		Metrics: metrics.Config{ApproachingWindowDays: s.Analysis.ApproachingWindowDays},
		Team:    team.Config{HighWorkloadRatio: s.Analysis.HighWorkloadRatio},
		Flow:    flow.Config{BottleneckRatio: s.Analysis.BottleneckRatio},
		Risk: risk.Thresholds{
			LowCompletionRate:      s.Analysis.LowCompletionRate,
			CriticalCompletionRate: s.Analysis.CriticalCompletionRate,
			HighBlockerCount:       s.Analysis.BlockerHighCount,
			HighOverdueCount:       s.Analysis.OverdueHighCount,
			SevereBottleneckRatio:  s.Analysis.BottleneckHighRatio,
		},
		Estimator: analytics.Config{
			SprintDays:    s.Analysis.SprintLengthDays,
			CheckpointDay: s.Analysis.CheckpointDay,
		},
	}
}
