package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/reportcols/internal/cli/config"
	"github.com/leapstack-labs/reportcols/internal/cli/output"
	"github.com/leapstack-labs/reportcols/internal/engine"
	"github.com/leapstack-labs/reportcols/internal/rowsize"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := config.GetLogger(cmd.Context())

	eng, err := CreateEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := eng.Close(); err != nil {
			logger.Warn("failed to close engine", "error", err)
		}
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}, cleanup, nil
}

// getConfig returns the configuration loaded by the root command, loading
// it from the working directory when a command runs on its own.
func getConfig() (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	cfg, err := config.LoadConfig("", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// CreateEngine builds an engine from the CLI configuration.
func CreateEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	return engine.New(engine.Config{
		StatePath: cfg.StatePath,
		RowSize: rowsize.Config{
			Driver:     cfg.RowSize.Driver,
			DSN:        cfg.RowSize.DSN,
			Limit:      cfg.RowSize.Limit,
			AssumeSafe: cfg.RowSize.AssumeSafe,
		},
		TextType:   cfg.Placeholder.TextType,
		NarrowType: cfg.Placeholder.NarrowType,
		Logger:     logger,
	})
}
