// Package cli provides the command-line interface for the journal
// application.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mindtrader/internal/analysis"
	"mindtrader/internal/config"
	"mindtrader/internal/logging"
	"mindtrader/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
	Engine *analysis.Engine
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, record and analyze commands will be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Storage.Path).Msg("SQLite store initialized")
	}

	// Invalid analysis thresholds are fatal here, before any command
	// runs.
	engine, err := analysis.NewEngine(cfg.Analysis, logging.WithComponent(logger, "engine"))
	if err != nil {
		logger.Error().Err(err).Msg("Invalid analysis configuration")
	} else {
		app.Engine = engine
	}

	rootCmd := &cobra.Command{
		Use:   "mindtrader",
		Short: "MindTrader - emotion-aware trading journal",
		Long: `MindTrader correlates your self-reported emotional state with your
trading results.

Log an emotion level before or after each trade, log the trade outcome,
and the analyzer will tell you at which emotional states you actually
make money, when your performance is trending, and which market timing
works for you.

Use 'mindtrader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/mindtrader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addRecordCommands(rootCmd, app)
	addAnalysisCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("MindTrader v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			output.Bold("Storage")
			output.Printf("  Path: %s\n", app.Config.Storage.Path)
			output.Println()
			output.Bold("Analysis")
			output.Printf("  Min sample:        %d\n", app.Config.Analysis.MinSample)
			output.Printf("  Timing min sample: %d\n", app.Config.Analysis.TimingMinSample)
			output.Printf("  Warn win rate:     %.0f%%\n", app.Config.Analysis.WarnWinRate)
			output.Printf("  Trend delta:       %.0fpp\n", app.Config.Analysis.TrendDelta)
			output.Printf("  Implicit linking:  %t\n", app.Config.Analysis.ImplicitLinking)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}
