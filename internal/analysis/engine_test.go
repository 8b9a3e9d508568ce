package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "mindtrader/internal/errors"
	"mindtrader/internal/models"
)

// testSnapshot builds a two-month journal with a deliberate pattern:
// calm levels (2-4) mostly win, agitated levels (8-10) mostly lose.
func testSnapshot() Snapshot {
	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC) // Monday

	var emotions []models.EmotionRecord
	var trades []models.TradeRecord
	n := 0
	add := func(day int, level int, outcome models.TradeOutcome, pnl float64) {
		n++
		eid := fmt.Sprintf("e%d", n)
		ts := base.AddDate(0, 0, day).Add(time.Duration(n%6) * time.Hour)
		emotions = append(emotions, models.EmotionRecord{
			ID:        eid,
			Timestamp: ts,
			Level:     level,
			Context:   models.ContextPreTrade,
		})
		trades = append(trades, models.TradeRecord{
			ID:        fmt.Sprintf("t%d", n),
			Timestamp: ts.Add(15 * time.Minute),
			Symbol:    "EURUSD",
			Outcome:   outcome,
			PnL:       &pnl,
			EmotionID: eid,
		})
	}

	for week := 0; week < 6; week++ {
		day := week * 7
		add(day, 2, models.OutcomeWin, 120)
		add(day+1, 3, models.OutcomeWin, 90)
		add(day+1, 4, models.OutcomeWin, 60)
		add(day+2, 5, models.OutcomeLoss, -40)
		add(day+3, 8, models.OutcomeLoss, -110)
		add(day+4, 9, models.OutcomeLoss, -150)
	}

	return Snapshot{Emotions: emotions, Trades: trades}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestEngineAnalyze(t *testing.T) {
	engine := newTestEngine(t)

	report, err := engine.Analyze(context.Background(), testSnapshot())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Correlation.Undefined {
		t.Error("correlation undefined over 36 linked trades")
	}
	if report.Correlation.Coefficient >= 0 {
		t.Errorf("Coefficient = %v, want negative (higher emotion loses)", report.Correlation.Coefficient)
	}
	if report.Correlation.SampleSize != 36 {
		t.Errorf("SampleSize = %d, want 36", report.Correlation.SampleSize)
	}

	if len(report.Trends) != 6 {
		t.Errorf("len(Trends) = %d, want 6 weeks", len(report.Trends))
	}
	if len(report.Insights) == 0 {
		t.Error("no insights generated")
	}

	// Calm levels carry the wins, so the optimal range must sit below
	// the avoid range.
	opt, avoid := report.Conditions.OptimalEmotionRange, report.Conditions.AvoidEmotionRange
	if opt.IsZero() || avoid.IsZero() {
		t.Fatalf("ranges missing: optimal %+v avoid %+v", opt, avoid)
	}
	if opt.High >= avoid.Low {
		t.Errorf("optimal %+v not below avoid %+v", opt, avoid)
	}

	diag := report.Diagnostics
	if diag.TradeRecords != 36 || diag.EmotionRecords != 36 {
		t.Errorf("diagnostics = %d trades / %d emotions, want 36/36", diag.TradeRecords, diag.EmotionRecords)
	}
	if diag.ExcludedTradeRecords != 0 || diag.ExcludedEmotionRecords != 0 {
		t.Errorf("unexpected exclusions: %+v", diag)
	}
}

func TestEngineAnalyzeDeterministic(t *testing.T) {
	engine := newTestEngine(t)
	snap := testSnapshot()

	first, err := engine.Analyze(context.Background(), snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := engine.Analyze(context.Background(), snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("reports differ between runs:\n%s\n%s", a, b)
	}
}

func TestEngineAnalyzeEmptySnapshot(t *testing.T) {
	engine := newTestEngine(t)

	report, err := engine.Analyze(context.Background(), Snapshot{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !report.Correlation.Undefined {
		t.Error("empty snapshot must report undefined correlation")
	}
	if len(report.Insights) != 1 || report.Insights[0].ID != "keep-tracking" {
		t.Errorf("Insights = %+v, want the keep-tracking insight", report.Insights)
	}
	if report.Insights[0].Actionable {
		t.Error("keep-tracking must not be actionable")
	}
}

func TestEngineAnalyzeCanceledContext(t *testing.T) {
	engine := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Analyze(ctx, testSnapshot()); err == nil {
		t.Error("Analyze succeeded on a canceled context")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero min sample", func(c *Config) { c.MinSample = 0 }, false},
		{"zero timing min sample", func(c *Config) { c.TimingMinSample = 0 }, false},
		{"negative warn win rate", func(c *Config) { c.WarnWinRate = -1 }, false},
		{"warn win rate above 100", func(c *Config) { c.WarnWinRate = 101 }, false},
		{"negative trend delta", func(c *Config) { c.TrendDelta = -0.5 }, false},
		{"zero trend delta", func(c *Config) { c.TrendDelta = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.valid {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !apperrors.Is(err, apperrors.ErrConfigInvalid) {
					t.Errorf("error %v does not wrap ErrConfigInvalid", err)
				}
			}
		})
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSample = -3

	if _, err := NewEngine(cfg, zerolog.Nop()); err == nil {
		t.Error("NewEngine accepted an invalid configuration")
	}
}
