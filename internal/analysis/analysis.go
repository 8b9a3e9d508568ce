// Package analysis is the emotion-performance pattern engine. It takes
// an immutable snapshot of a trader's emotion and trade records and
// produces the correlation, weekly trends, optimal conditions and ranked
// insights that make up one analysis report.
//
// The engine is purely functional over its input: it holds no state
// between calls, performs no I/O, and produces identical output for
// identical snapshots.
package analysis

import (
	"time"

	"mindtrader/internal/errors"
	"mindtrader/internal/models"
)

// Defaults for the caller-overridable thresholds.
const (
	DefaultMinSample       = 5
	DefaultTimingMinSample = 3
	DefaultWarnWinRate     = 40
	DefaultTrendDelta      = 5
)

// Config is the engine's threshold surface. The significance p-value
// (0.05) and the correlation insight thresholds (0.3 / 0.5) are part of
// the published contract and not configurable.
type Config struct {
	// MinSample is the minimum correlation sample size.
	MinSample int `mapstructure:"min_sample"`
	// TimingMinSample is the per-slot sample floor for timing stats.
	TimingMinSample int `mapstructure:"timing_min_sample"`
	// WarnWinRate is the win rate below which a level bucket warns.
	WarnWinRate float64 `mapstructure:"warn_win_rate"`
	// TrendDelta is the week-over-week win-rate delta, in percentage
	// points, separating improving/declining from stable.
	TrendDelta float64 `mapstructure:"trend_delta"`
	// ImplicitLinking joins unlinked trades to the most recent preceding
	// emotion record instead of leaving them out of level statistics.
	ImplicitLinking bool `mapstructure:"implicit_linking"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinSample:       DefaultMinSample,
		TimingMinSample: DefaultTimingMinSample,
		WarnWinRate:     DefaultWarnWinRate,
		TrendDelta:      DefaultTrendDelta,
	}
}

// Validate rejects threshold combinations the engine cannot run with.
func (c Config) Validate() error {
	if c.MinSample < 1 {
		return errors.NewConfigError("min_sample", c.MinSample, "must be at least 1")
	}
	if c.TimingMinSample < 1 {
		return errors.NewConfigError("timing_min_sample", c.TimingMinSample, "must be at least 1")
	}
	if c.WarnWinRate < 0 || c.WarnWinRate > 100 {
		return errors.NewConfigError("warn_win_rate", c.WarnWinRate, "must be between 0 and 100")
	}
	if c.TrendDelta < 0 {
		return errors.NewConfigError("trend_delta", c.TrendDelta, "must be non-negative")
	}
	return nil
}

// Snapshot is the immutable input to one analysis run. Records arrive
// already validated by the storage layer; the engine defensively drops
// anything violating the input contract and counts it in diagnostics.
type Snapshot struct {
	Emotions []models.EmotionRecord
	Trades   []models.TradeRecord
	From     time.Time
	To       time.Time
}

// Report is the combined result of one analysis run. All four sections
// are intended for direct JSON serialization; field names and value
// ranges are the stable contract.
type Report struct {
	Correlation models.CorrelationResult `json:"correlation"`
	Trends      []models.TrendPoint      `json:"trends"`
	Conditions  models.OptimalConditions `json:"conditions"`
	Insights    []models.Insight         `json:"insights"`
	Diagnostics models.Diagnostics       `json:"diagnostics"`
}
