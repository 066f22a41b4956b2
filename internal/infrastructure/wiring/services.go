// Package wiring constructs the application services from the settings file.
package wiring

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sprintlens/sprintlens/internal/application"
	"github.com/sprintlens/sprintlens/internal/infrastructure/config"
	"github.com/sprintlens/sprintlens/internal/infrastructure/logging"
	"github.com/sprintlens/sprintlens/internal/infrastructure/source"
	"github.com/sprintlens/sprintlens/internal/infrastructure/source/github"
	"github.com/sprintlens/sprintlens/internal/infrastructure/source/jira"
	"github.com/sprintlens/sprintlens/internal/infrastructure/source/trello"
	"github.com/sprintlens/sprintlens/internal/infrastructure/store"
)

// AppServices exposes the application layer services wired together with a
// workspace store and the configured board source.
type AppServices struct {
	Settings *config.Settings
	Logger   *slog.Logger
	Store    *store.Store
	Source   source.Source
	Collect  *application.CollectService
	Analysis *application.AnalysisService
	Report   *application.ReportService
}

// BuildAppServices loads settings from settingsPath and constructs the
// service graph. Log lines go to logWriter; empty fields in logOpts fall
// back to the settings file's logging section.
func BuildAppServices(settingsPath string, logWriter io.Writer, logOpts logging.Options) (*AppServices, error) {
	settings, err := config.Load(settingsPath)
	if err != nil {
		return nil, err
	}

	if logOpts.Level == "" {
		logOpts.Level = settings.Logging.Level
	}
	if logOpts.Format == "" {
		logOpts.Format = settings.Logging.Format
	}
	logger := logging.New(logWriter, logOpts)

	src, err := buildSource(settings, logger)
	if err != nil {
		return nil, err
	}

	st := store.NewStore(settings.Workspace)
	analysis := application.NewAnalysisService(settings.AnalysisConfig(), logger)

	return &AppServices{
		Settings: settings,
		Logger:   logger,
		Store:    st,
		Source:   src,
		Collect:  application.NewCollectService(src, st, logger),
		Analysis: analysis,
		Report:   application.NewReportService(analysis, logger),
	}, nil
}

// buildSource constructs the board source named in the settings. An empty
// source name means Trello.
func buildSource(settings *config.Settings, logger *slog.Logger) (source.Source, error) {
	switch settings.Source {
	case config.SourceTrello, "":
		return trello.New(trello.Config{
			APIKey:   settings.Trello.APIKey,
			APIToken: settings.Trello.APIToken,
			BoardID:  settings.Trello.BoardID,
		}, logger), nil
	case config.SourceGitHub:
		return github.New(github.Config{
			Token: settings.GitHub.Token,
			Owner: settings.GitHub.Owner,
			Repo:  settings.GitHub.Repo,
		}, logger)
	case config.SourceJira:
		return jira.New(jira.Config{
			Domain:     settings.Jira.Domain,
			Email:      settings.Jira.Email,
			APIToken:   settings.Jira.APIToken,
			ProjectKey: settings.Jira.ProjectKey,
		}, logger), nil
	case config.SourceFile:
		return &source.FileSource{Path: settings.File.Path}, nil
	default:
		return nil, fmt.Errorf("unknown source %q (expected trello, github, jira, or file)", settings.Source)
	}
}
