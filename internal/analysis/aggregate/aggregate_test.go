package aggregate

import (
	"testing"
	"time"

	"mindtrader/internal/models"
)

func emotionAt(id string, ts time.Time, level int) models.EmotionRecord {
	return models.EmotionRecord{
		ID:        id,
		Timestamp: ts,
		Level:     level,
		Context:   models.ContextPreTrade,
	}
}

func tradeAt(ts time.Time, outcome models.TradeOutcome, emotionID string) models.TradeRecord {
	return models.TradeRecord{
		ID:        "t-" + ts.Format(time.RFC3339),
		Timestamp: ts,
		Symbol:    "BTCUSD",
		Outcome:   outcome,
		EmotionID: emotionID,
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "monday maps to itself",
			in:   time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC),
			want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday maps to previous monday",
			in:   time.Date(2026, 3, 8, 23, 59, 59, 0, time.UTC),
			want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "wednesday mid-week",
			in:   time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "year boundary",
			in:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), // Thursday
			want: time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildExcludesMalformedRecords(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	emotions := []models.EmotionRecord{
		emotionAt("e1", base, 5),
		{ID: "e2", Timestamp: base, Level: 11, Context: models.ContextPreTrade},
		{ID: "e3", Timestamp: base, Level: 4, Context: "nervous"},
	}
	trades := []models.TradeRecord{
		tradeAt(base.Add(time.Hour), models.OutcomeWin, "e1"),
		{ID: "bad", Timestamp: base, Symbol: "X", Outcome: "scratch"},
	}

	res := Build(emotions, trades, time.Time{}, time.Time{}, Options{})

	if res.EmotionRecords != 1 {
		t.Errorf("EmotionRecords = %d, want 1", res.EmotionRecords)
	}
	if res.ExcludedEmotions != 2 {
		t.Errorf("ExcludedEmotions = %d, want 2", res.ExcludedEmotions)
	}
	if res.ExcludedTrades != 1 {
		t.Errorf("ExcludedTrades = %d, want 1", res.ExcludedTrades)
	}
	if res.TotalTrades != 1 {
		t.Errorf("TotalTrades = %d, want 1", res.TotalTrades)
	}
	if got := res.Reasons[ReasonEmotionLevelOutOfRange]; got != 1 {
		t.Errorf("Reasons[%s] = %d, want 1", ReasonEmotionLevelOutOfRange, got)
	}
	if got := res.Reasons[ReasonEmotionContextUnknown]; got != 1 {
		t.Errorf("Reasons[%s] = %d, want 1", ReasonEmotionContextUnknown, got)
	}
	if got := res.Reasons[ReasonTradeOutcomeUnknown]; got != 1 {
		t.Errorf("Reasons[%s] = %d, want 1", ReasonTradeOutcomeUnknown, got)
	}
}

func TestBuildDateRangeFilter(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	emotions := []models.EmotionRecord{
		emotionAt("in", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), 6),
		emotionAt("before", time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC), 6),
		emotionAt("after", time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC), 6),
	}
	trades := []models.TradeRecord{
		tradeAt(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), models.OutcomeWin, "in"),
		tradeAt(time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC), models.OutcomeWin, "after"),
	}

	res := Build(emotions, trades, from, to, Options{})

	if res.EmotionRecords != 1 {
		t.Errorf("EmotionRecords = %d, want 1", res.EmotionRecords)
	}
	if res.TotalTrades != 1 {
		t.Errorf("TotalTrades = %d, want 1", res.TotalTrades)
	}
	if got := res.Reasons[ReasonOutOfDateRange]; got != 3 {
		t.Errorf("Reasons[%s] = %d, want 3", ReasonOutOfDateRange, got)
	}
}

func TestBuildLevelBuckets(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	emotions := []models.EmotionRecord{emotionAt("e7", base, 7)}

	// 15 trades at level 7: 12 wins, 3 losses.
	var trades []models.TradeRecord
	for i := 0; i < 12; i++ {
		trades = append(trades, tradeAt(base.Add(time.Duration(i)*time.Minute), models.OutcomeWin, "e7"))
	}
	for i := 12; i < 15; i++ {
		trades = append(trades, tradeAt(base.Add(time.Duration(i)*time.Minute), models.OutcomeLoss, "e7"))
	}

	res := Build(emotions, trades, time.Time{}, time.Time{}, Options{})

	if len(res.Levels) != 1 {
		t.Fatalf("len(Levels) = %d, want 1", len(res.Levels))
	}
	b := res.Levels[0]
	if b.Level != 7 {
		t.Errorf("Level = %d, want 7", b.Level)
	}
	if b.TradeCount != 15 || b.Wins != 12 || b.Losses != 3 {
		t.Errorf("bucket = %d trades / %d wins / %d losses, want 15/12/3", b.TradeCount, b.Wins, b.Losses)
	}
	if got := b.WinRate(); got != 80 {
		t.Errorf("WinRate() = %v, want 80", got)
	}
}

func TestBuildZeroBucketsAbsent(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	emotions := []models.EmotionRecord{
		emotionAt("e3", base, 3),
		emotionAt("e9", base.Add(time.Minute), 9),
	}
	trades := []models.TradeRecord{
		tradeAt(base.Add(time.Hour), models.OutcomeWin, "e3"),
	}

	res := Build(emotions, trades, time.Time{}, time.Time{}, Options{})

	// Level 9 saw no trades so it must not appear.
	if len(res.Levels) != 1 || res.Levels[0].Level != 3 {
		t.Fatalf("Levels = %+v, want only level 3", res.Levels)
	}
	if len(res.Timing) != 1 {
		t.Errorf("len(Timing) = %d, want 1", len(res.Timing))
	}
}

func TestBuildEmptyInput(t *testing.T) {
	res := Build(nil, nil, time.Time{}, time.Time{}, Options{})

	if len(res.Levels) != 0 || len(res.Weeks) != 0 || len(res.Timing) != 0 {
		t.Errorf("expected empty buckets, got %d levels / %d weeks / %d timing",
			len(res.Levels), len(res.Weeks), len(res.Timing))
	}
	if res.TotalTrades != 0 || res.OverallWinRate() != 0 {
		t.Errorf("TotalTrades = %d, OverallWinRate = %v, want 0/0", res.TotalTrades, res.OverallWinRate())
	}
}

func TestResolveLinkExplicit(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	emotions := []models.EmotionRecord{
		emotionAt("early", base, 2),
		emotionAt("late", base.Add(2*time.Hour), 8),
	}
	// Explicit link wins over timestamp proximity.
	trades := []models.TradeRecord{
		tradeAt(base.Add(3*time.Hour), models.OutcomeWin, "early"),
	}

	res := Build(emotions, trades, time.Time{}, time.Time{}, Options{})

	if len(res.Levels) != 1 || res.Levels[0].Level != 2 {
		t.Fatalf("Levels = %+v, want only level 2", res.Levels)
	}
	if res.UnlinkedTrades != 0 {
		t.Errorf("UnlinkedTrades = %d, want 0", res.UnlinkedTrades)
	}
}

func TestResolveLinkImplicit(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	emotions := []models.EmotionRecord{
		emotionAt("morning", base, 4),
		emotionAt("noon", base.Add(2*time.Hour), 7),
	}
	trades := []models.TradeRecord{
		tradeAt(base.Add(3*time.Hour), models.OutcomeWin, ""),  // after noon -> level 7
		tradeAt(base.Add(time.Hour), models.OutcomeLoss, ""),   // between -> level 4
		tradeAt(base.Add(-time.Hour), models.OutcomeWin, ""),   // before any -> unlinked
	}

	t.Run("disabled", func(t *testing.T) {
		res := Build(emotions, trades, time.Time{}, time.Time{}, Options{})
		if res.UnlinkedTrades != 3 {
			t.Errorf("UnlinkedTrades = %d, want 3", res.UnlinkedTrades)
		}
		if len(res.Levels) != 0 {
			t.Errorf("Levels = %+v, want none", res.Levels)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		res := Build(emotions, trades, time.Time{}, time.Time{}, Options{ImplicitLinking: true})
		if res.UnlinkedTrades != 1 {
			t.Errorf("UnlinkedTrades = %d, want 1", res.UnlinkedTrades)
		}
		if len(res.Levels) != 2 {
			t.Fatalf("len(Levels) = %d, want 2", len(res.Levels))
		}
		if res.Levels[0].Level != 4 || res.Levels[1].Level != 7 {
			t.Errorf("Levels = [%d %d], want [4 7]", res.Levels[0].Level, res.Levels[1].Level)
		}
	})
}

func TestTimingBucketsCountUnlinkedTrades(t *testing.T) {
	// Tuesday 14:xx UTC, no emotion records at all.
	ts := time.Date(2026, 3, 3, 14, 5, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		tradeAt(ts, models.OutcomeWin, ""),
		tradeAt(ts.Add(10*time.Minute), models.OutcomeLoss, ""),
		tradeAt(ts.Add(20*time.Minute), models.OutcomeWin, ""),
	}

	res := Build(nil, trades, time.Time{}, time.Time{}, Options{})

	if len(res.Timing) != 1 {
		t.Fatalf("len(Timing) = %d, want 1", len(res.Timing))
	}
	tb := res.Timing[0]
	if tb.Day != time.Tuesday || tb.Hour != 14 {
		t.Errorf("slot = %v %d, want Tuesday 14", tb.Day, tb.Hour)
	}
	if tb.TradeCount != 3 || tb.Wins != 2 {
		t.Errorf("slot = %d trades / %d wins, want 3/2", tb.TradeCount, tb.Wins)
	}
	if got := tb.WinRate(); got != 67 {
		t.Errorf("WinRate() = %v, want 67", got)
	}
}

func TestWeekBucketsSorted(t *testing.T) {
	w1 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	w3 := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		tradeAt(w3, models.OutcomeWin, ""),
		tradeAt(w1, models.OutcomeLoss, ""),
	}

	res := Build(nil, trades, time.Time{}, time.Time{}, Options{})

	if len(res.Weeks) != 2 {
		t.Fatalf("len(Weeks) = %d, want 2", len(res.Weeks))
	}
	if !res.Weeks[0].WeekStart.Before(res.Weeks[1].WeekStart) {
		t.Errorf("weeks not sorted: %v then %v", res.Weeks[0].WeekStart, res.Weeks[1].WeekStart)
	}
}
