package models

import "time"

// The types below form the stable output contract of the analysis engine.
// Field names and value ranges (win rate 0-100, confidence 0-100,
// coefficient -1..1) are consumed as-is by the presentation layer; no
// renormalization happens downstream.

// EmotionLevelStat holds per-emotion-level trade statistics.
type EmotionLevelStat struct {
	Level          int     `json:"level"`
	TradeCount     int     `json:"tradeCount"`
	WinRate        float64 `json:"winRate"`
	AveragePnl     float64 `json:"averagePnl"`
	AverageEmotion float64 `json:"averageEmotion"`
}

// CorrelationResult is the outcome of the emotion/performance correlation.
// When Undefined is true the input had zero variance on one axis and
// Coefficient is reported as 0, never NaN.
type CorrelationResult struct {
	Coefficient               float64            `json:"coefficient"`
	Undefined                 bool               `json:"undefined"`
	SampleSize                int                `json:"sampleSize"`
	IsStatisticallySignificant bool              `json:"isStatisticallySignificant"`
	PerLevelStats             []EmotionLevelStat `json:"perLevelStats"`
}

// TrendDirection classifies week-over-week performance movement.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// TrendPoint is one week of aggregated performance.
type TrendPoint struct {
	WeekStart      time.Time      `json:"weekStart"`
	AverageEmotion float64        `json:"averageEmotion"`
	WinRate        float64        `json:"winRate"`
	TotalPnl       float64        `json:"totalPnl"`
	Direction      TrendDirection `json:"direction"`
}

// EmotionRange is an inclusive range of emotion levels. A zero-count
// range means no levels fell into that partition.
type EmotionRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// IsZero reports whether the range holds no levels.
func (r EmotionRange) IsZero() bool {
	return r.Low == 0 && r.High == 0
}

// Contains reports whether level falls inside the range.
func (r EmotionRange) Contains(level int) bool {
	return !r.IsZero() && level >= r.Low && level <= r.High
}

// TimingWindow identifies a (day-of-week, hour) slot and its stats.
type TimingWindow struct {
	Day        string  `json:"day"`
	Hour       int     `json:"hour"`
	WinRate    float64 `json:"winRate"`
	TradeCount int     `json:"tradeCount"`
}

// OptimalConditions is the tertile partition of emotion levels by win
// rate plus the best timing slot and a composite readiness score.
type OptimalConditions struct {
	OptimalEmotionRange EmotionRange  `json:"optimalEmotionRange"`
	CautionEmotionRange EmotionRange  `json:"cautionEmotionRange"`
	AvoidEmotionRange   EmotionRange  `json:"avoidEmotionRange"`
	BestMarketTiming    *TimingWindow `json:"bestMarketTiming,omitempty"`
	OverallScore        float64       `json:"overallScore"`
}

// InsightKind is the closed set of insight categories.
type InsightKind string

const (
	KindPerformanceCorrelation InsightKind = "performance_correlation"
	KindWarning                InsightKind = "warning"
	KindTrend                  InsightKind = "trend"
	KindTiming                 InsightKind = "timing"
)

// InsightPriority ranks insights for presentation.
type InsightPriority string

const (
	PriorityHigh   InsightPriority = "High"
	PriorityMedium InsightPriority = "Medium"
	PriorityLow    InsightPriority = "Low"
)

// Rank returns a numeric rank for sorting, higher is more urgent.
func (p InsightPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Insight is a ranked, explainable statement derived from the analyses.
type Insight struct {
	ID         string          `json:"id"`
	Kind       InsightKind     `json:"kind"`
	Message    string          `json:"message"`
	Confidence float64         `json:"confidence"`
	Priority   InsightPriority `json:"priority"`
	Actionable bool            `json:"actionable"`
}

// Diagnostics summarizes how input records were treated so that "no
// insights" is always distinguishable from "insufficient data".
type Diagnostics struct {
	EmotionRecords        int            `json:"emotionRecords"`
	TradeRecords          int            `json:"tradeRecords"`
	ExcludedEmotionRecords int           `json:"excludedEmotionRecords"`
	ExcludedTradeRecords  int            `json:"excludedTradeRecords"`
	UnlinkedTrades        int            `json:"unlinkedTrades"`
	ExclusionReasons      map[string]int `json:"exclusionReasons,omitempty"`
}
