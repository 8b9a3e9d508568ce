package main

import (
	"os"

	"mindtrader/internal/cli"
	"mindtrader/internal/config"
	"mindtrader/internal/logging"
)

func main() {
	configDir := configDirFromArgs(os.Args[1:])

	cfg, err := config.Load(configDir)
	if err != nil {
		fallback := logging.NewLogger()
		fallback.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
	})

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		// Commands print their own errors; the exit code is the signal.
		os.Exit(1)
	}
}

// configDirFromArgs pulls the --config flag before cobra parses anything,
// because the config decides how the logger that cobra's commands use is
// built.
func configDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):]
		}
	}
	return ""
}
