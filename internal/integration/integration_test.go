// Package integration holds end-to-end tests of the journal pipeline:
// records go in through the store, a snapshot comes out, and the engine
// turns it into the JSON report contract.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mindtrader/internal/analysis"
	"mindtrader/internal/models"
	"mindtrader/internal/store"
)

func TestJournalToReportWorkflow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPath := filepath.Join(t.TempDir(), "journal.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer dataStore.Close()

	// Four weeks of journaling: calm mornings win, tilted afternoons
	// lose.
	base := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC) // Monday
	n := 0
	logPair := func(day int, level int, outcome models.TradeOutcome, pnl float64) {
		n++
		eid := fmt.Sprintf("emotion-%d", n)
		ts := base.AddDate(0, 0, day)
		if level >= 7 {
			ts = ts.Add(5 * time.Hour)
		}
		if err := dataStore.SaveEmotionRecord(ctx, &models.EmotionRecord{
			ID:        eid,
			Timestamp: ts,
			Level:     level,
			Context:   models.ContextPreTrade,
		}); err != nil {
			t.Fatalf("SaveEmotionRecord: %v", err)
		}
		if err := dataStore.SaveTradeRecord(ctx, &models.TradeRecord{
			ID:        fmt.Sprintf("trade-%d", n),
			Timestamp: ts.Add(20 * time.Minute),
			Symbol:    "EURUSD",
			Outcome:   outcome,
			PnL:       &pnl,
			EmotionID: eid,
		}); err != nil {
			t.Fatalf("SaveTradeRecord: %v", err)
		}
	}

	for week := 0; week < 4; week++ {
		day := week * 7
		logPair(day, 3, models.OutcomeWin, 100)
		logPair(day+1, 2, models.OutcomeWin, 80)
		logPair(day+2, 4, models.OutcomeWin, 60)
		logPair(day+3, 8, models.OutcomeLoss, -90)
		logPair(day+4, 9, models.OutcomeLoss, -120)
	}

	snap, err := dataStore.LoadSnapshot(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Emotions) != 20 || len(snap.Trades) != 20 {
		t.Fatalf("snapshot = %d emotions / %d trades, want 20/20", len(snap.Emotions), len(snap.Trades))
	}

	engine, err := analysis.NewEngine(analysis.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	report, err := engine.Analyze(ctx, *snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Correlation.Undefined {
		t.Error("correlation undefined over 20 linked trades")
	}
	if report.Correlation.Coefficient >= 0 {
		t.Errorf("Coefficient = %v, want negative", report.Correlation.Coefficient)
	}
	if len(report.Trends) != 4 {
		t.Errorf("len(Trends) = %d, want 4 weeks", len(report.Trends))
	}
	if report.Conditions.OptimalEmotionRange.IsZero() {
		t.Error("optimal range missing")
	}
	if len(report.Insights) == 0 {
		t.Error("no insights generated")
	}
	if report.Diagnostics.UnlinkedTrades != 0 {
		t.Errorf("UnlinkedTrades = %d, want 0", report.Diagnostics.UnlinkedTrades)
	}
}

// TestReportContractFieldNames pins the published JSON field names the
// presentation layer depends on.
func TestReportContractFieldNames(t *testing.T) {
	engine, err := analysis.NewEngine(analysis.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	report, err := engine.Analyze(context.Background(), analysis.Snapshot{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"correlation", "trends", "conditions", "insights", "diagnostics"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("report JSON missing %q section", key)
		}
	}

	var corr map[string]json.RawMessage
	if err := json.Unmarshal(decoded["correlation"], &corr); err != nil {
		t.Fatalf("unmarshal correlation: %v", err)
	}
	for _, key := range []string{"coefficient", "undefined", "sampleSize", "isStatisticallySignificant", "perLevelStats"} {
		if _, ok := corr[key]; !ok {
			t.Errorf("correlation JSON missing %q", key)
		}
	}
}
