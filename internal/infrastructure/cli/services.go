package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sprintlens/sprintlens/internal/infrastructure/config"
	"github.com/sprintlens/sprintlens/internal/infrastructure/logging"
	"github.com/sprintlens/sprintlens/internal/infrastructure/wiring"
)

// settingsPath resolves the settings file location from the --config flag,
// falling back to the default workspace layout.
func settingsPath() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(config.DefaultWorkspace, config.SettingsFile)
}

// loadServices builds the wired service graph for the current invocation and
// installs its logger as the process default so package-level log calls share
// the configured handler.
func loadServices() (*wiring.AppServices, error) {
	services, err := wiring.BuildAppServices(settingsPath(), os.Stderr, logging.Options{
		Format:  logFormat,
		Verbose: verbose,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(services.Logger)
	return services, nil
}
