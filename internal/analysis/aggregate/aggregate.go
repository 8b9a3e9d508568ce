// Package aggregate buckets paired emotion/trade records by emotion
// level, by ISO week (Monday start, UTC) and by (day-of-week, hour)
// timing slot. It is the first stage of the analysis pipeline; every
// later stage reads its output and nothing else.
package aggregate

import (
	"math"
	"sort"
	"time"

	"mindtrader/internal/models"
)

// Exclusion reasons reported in the aggregation result.
const (
	ReasonEmotionLevelOutOfRange = "emotion-level-out-of-range"
	ReasonEmotionContextUnknown  = "emotion-context-unknown"
	ReasonTradeOutcomeUnknown    = "trade-outcome-unknown"
	ReasonOutOfDateRange         = "out-of-date-range"
)

// Options controls the emotion/trade join policy.
type Options struct {
	// ImplicitLinking joins a trade with no explicit emotion link to the
	// most recent emotion record at or before the trade timestamp. Off by
	// default: only explicit links resolve.
	ImplicitLinking bool
}

// LinkedTrade is a trade joined to its resolved emotion level.
type LinkedTrade struct {
	Trade models.TradeRecord
	Level int
}

// LevelBucket accumulates trades linked to one emotion level.
type LevelBucket struct {
	Level      int
	TradeCount int
	Wins       int
	Losses     int
	Breakevens int
	PnlSum     float64
	PnlCount   int
	EmotionSum float64
}

// WinRate returns the bucket win rate rounded to whole percentage points.
func (b *LevelBucket) WinRate() float64 {
	if b.TradeCount == 0 {
		return 0
	}
	return math.Round(100 * float64(b.Wins) / float64(b.TradeCount))
}

// AveragePnl returns the mean pnl over trades that carried one.
func (b *LevelBucket) AveragePnl() float64 {
	if b.PnlCount == 0 {
		return 0
	}
	return b.PnlSum / float64(b.PnlCount)
}

// AverageEmotion returns the mean linked emotion level of the bucket.
func (b *LevelBucket) AverageEmotion() float64 {
	if b.TradeCount == 0 {
		return 0
	}
	return b.EmotionSum / float64(b.TradeCount)
}

// WeekBucket accumulates one calendar week of records.
type WeekBucket struct {
	WeekStart    time.Time
	TradeCount   int
	Wins         int
	PnlSum       float64
	EmotionSum   float64
	EmotionCount int
}

// WinRate returns the week's win rate in percentage points.
func (b *WeekBucket) WinRate() float64 {
	if b.TradeCount == 0 {
		return 0
	}
	return 100 * float64(b.Wins) / float64(b.TradeCount)
}

// AverageEmotion returns the mean self-reported emotion level for the
// week, falling back to 0 when no emotion records fell into it.
func (b *WeekBucket) AverageEmotion() float64 {
	if b.EmotionCount == 0 {
		return 0
	}
	return b.EmotionSum / float64(b.EmotionCount)
}

// TimingBucket accumulates trades for one (day-of-week, hour) slot.
// Timing buckets count every trade in range, linked or not.
type TimingBucket struct {
	Day        time.Weekday
	Hour       int
	TradeCount int
	Wins       int
}

// WinRate returns the slot win rate rounded to whole percentage points.
func (b *TimingBucket) WinRate() float64 {
	if b.TradeCount == 0 {
		return 0
	}
	return math.Round(100 * float64(b.Wins) / float64(b.TradeCount))
}

// Result is the full set of groupings for one snapshot. Buckets with zero
// records are never present. All slices are sorted so that identical
// input always yields identical output.
type Result struct {
	Levels []*LevelBucket
	Weeks  []*WeekBucket
	Timing []*TimingBucket

	// Linked holds every trade with a resolved emotion link, in input
	// order. Only these trades feed level statistics and correlation.
	Linked []LinkedTrade

	TotalTrades    int
	TotalWins      int
	UnlinkedTrades int

	EmotionRecords   int
	ExcludedEmotions int
	ExcludedTrades   int
	Reasons          map[string]int
}

// OverallWinRate returns the win rate over all in-range trades, rounded
// to whole percentage points.
func (r *Result) OverallWinRate() float64 {
	if r.TotalTrades == 0 {
		return 0
	}
	return math.Round(100 * float64(r.TotalWins) / float64(r.TotalTrades))
}

// WeekStart returns the Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// Build groups the snapshot into level, week and timing buckets.
// Records violating the input contract or falling outside [from, to] are
// excluded and counted, never raised. Empty input yields an empty result.
func Build(emotions []models.EmotionRecord, trades []models.TradeRecord, from, to time.Time, opts Options) *Result {
	res := &Result{Reasons: make(map[string]int)}

	inRange := func(ts time.Time) bool {
		if !from.IsZero() && ts.Before(from) {
			return false
		}
		if !to.IsZero() && ts.After(to) {
			return false
		}
		return true
	}

	// Defensive filter pass over emotion records.
	valid := make([]models.EmotionRecord, 0, len(emotions))
	byID := make(map[string]models.EmotionRecord, len(emotions))
	for _, e := range emotions {
		switch {
		case e.Level < models.MinEmotionLevel || e.Level > models.MaxEmotionLevel:
			res.exclude(&res.ExcludedEmotions, ReasonEmotionLevelOutOfRange)
		case !e.Context.Valid():
			res.exclude(&res.ExcludedEmotions, ReasonEmotionContextUnknown)
		case !inRange(e.Timestamp):
			res.exclude(&res.ExcludedEmotions, ReasonOutOfDateRange)
		default:
			valid = append(valid, e)
			if e.ID != "" {
				byID[e.ID] = e
			}
		}
	}
	res.EmotionRecords = len(valid)

	// Implicit linking scans the preceding emotion record, so keep a
	// time-sorted copy. The sort is stable to keep ties deterministic.
	sorted := make([]models.EmotionRecord, len(valid))
	copy(sorted, valid)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	weeks := make(map[time.Time]*WeekBucket)
	weekOf := func(ts time.Time) *WeekBucket {
		ws := WeekStart(ts)
		b, ok := weeks[ws]
		if !ok {
			b = &WeekBucket{WeekStart: ws}
			weeks[ws] = b
		}
		return b
	}

	for _, e := range valid {
		wb := weekOf(e.Timestamp)
		wb.EmotionSum += float64(e.Level)
		wb.EmotionCount++
	}

	levels := make(map[int]*LevelBucket)
	timing := make(map[timingKey]*TimingBucket)

	for _, t := range trades {
		if !t.Outcome.Valid() {
			res.exclude(&res.ExcludedTrades, ReasonTradeOutcomeUnknown)
			continue
		}
		if !inRange(t.Timestamp) {
			res.exclude(&res.ExcludedTrades, ReasonOutOfDateRange)
			continue
		}

		res.TotalTrades++
		win := t.Outcome == models.OutcomeWin
		if win {
			res.TotalWins++
		}

		// Timing and week buckets count every in-range trade.
		ts := t.Timestamp.UTC()
		tk := timingKey{day: ts.Weekday(), hour: ts.Hour()}
		tb, ok := timing[tk]
		if !ok {
			tb = &TimingBucket{Day: tk.day, Hour: tk.hour}
			timing[tk] = tb
		}
		tb.TradeCount++
		if win {
			tb.Wins++
		}

		wb := weekOf(t.Timestamp)
		wb.TradeCount++
		if win {
			wb.Wins++
		}
		if t.PnL != nil {
			wb.PnlSum += *t.PnL
		}

		// Level buckets only see trades with a resolvable emotion link.
		level, linked := resolveLink(t, byID, sorted, opts)
		if !linked {
			res.UnlinkedTrades++
			continue
		}
		res.Linked = append(res.Linked, LinkedTrade{Trade: t, Level: level})

		lb, ok := levels[level]
		if !ok {
			lb = &LevelBucket{Level: level}
			levels[level] = lb
		}
		lb.TradeCount++
		lb.EmotionSum += float64(level)
		switch t.Outcome {
		case models.OutcomeWin:
			lb.Wins++
		case models.OutcomeLoss:
			lb.Losses++
		case models.OutcomeBreakeven:
			lb.Breakevens++
		}
		if t.PnL != nil {
			lb.PnlSum += *t.PnL
			lb.PnlCount++
		}
	}

	res.Levels = sortLevels(levels)
	res.Weeks = sortWeeks(weeks)
	res.Timing = sortTiming(timing)
	if len(res.Reasons) == 0 {
		res.Reasons = nil
	}
	return res
}

func (r *Result) exclude(counter *int, reason string) {
	*counter++
	r.Reasons[reason]++
}

// resolveLink returns the emotion level for a trade, preferring the
// explicit link and optionally falling back to the most recent preceding
// emotion record.
func resolveLink(t models.TradeRecord, byID map[string]models.EmotionRecord, sorted []models.EmotionRecord, opts Options) (int, bool) {
	if t.EmotionID != "" {
		if e, ok := byID[t.EmotionID]; ok {
			return e.Level, true
		}
		// A dangling link falls through to implicit resolution when the
		// caller opted in, otherwise the trade stays unlinked.
	}
	if !opts.ImplicitLinking {
		return 0, false
	}
	// Most recent emotion record at or before the trade.
	idx := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Timestamp.After(t.Timestamp)
	})
	if idx == 0 {
		return 0, false
	}
	return sorted[idx-1].Level, true
}

func sortLevels(m map[int]*LevelBucket) []*LevelBucket {
	out := make([]*LevelBucket, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

func sortWeeks(m map[time.Time]*WeekBucket) []*WeekBucket {
	out := make([]*WeekBucket, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out
}

type timingKey struct {
	day  time.Weekday
	hour int
}

func sortTiming(m map[timingKey]*TimingBucket) []*TimingBucket {
	out := make([]*TimingBucket, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Hour < out[j].Hour
	})
	return out
}
