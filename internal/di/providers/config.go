// Package providers contains dependency injection providers for the recipe server.
package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/yeungho415/recipe/internal/config"
	"github.com/yeungho415/recipe/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Everything on disk lives under the data path.
	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return cfg, nil
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level: logger.ParseLevel(cfg.Logger.Level),
		JSON:  cfg.IsProduction(),
	})

	log.Info("Starting recipe server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)

	return log, nil
}
