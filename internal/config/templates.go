package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# mindtrader configuration

[storage]
# Path to the SQLite journal database.
# path = "~/.config/mindtrader/mindtrader.db"

[logging]
# level = "info"     # debug, info, warn, error
# console = true
# file = true
# file_path = "~/.config/mindtrader/logs/mindtrader.log"

[ui]
# color_enabled = true
# date_format = "02-Jan-2006"

[analysis]
# Minimum sample size before a correlation is computed.
# min_sample = 5

# Minimum trades in a (day, hour) slot before it counts for timing stats.
# timing_min_sample = 3

# Win rate (percentage points) below which an emotion level warns.
# warn_win_rate = 40.0

# Week-over-week win-rate change (percentage points) separating
# improving/declining from stable.
# trend_delta = 5.0

# Link trades without an explicit emotion link to the most recent
# preceding emotion record.
# implicit_linking = false
`

// writeTemplate writes a commented config template on first run.
func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
