// Package insight applies a fixed, deterministic rule set over the
// correlation, trend and optimal-condition results to emit ranked,
// explainable insight records. Every rule is independently evaluable and
// idempotent; running the generator twice on the same inputs yields the
// same list.
package insight

import (
	"fmt"
	"math"
	"sort"

	"mindtrader/internal/models"
)

// Thresholds are the rule constants. The correlation thresholds are part
// of the published engine contract and fixed; the win-rate and timing
// bars are caller-overridable via the engine configuration.
type Thresholds struct {
	// CorrelationThreshold is the minimum |r| for the correlation rule.
	CorrelationThreshold float64
	// StrongCorrelation is the |r| bar for High priority.
	StrongCorrelation float64
	// WarnWinRate is the win rate below which a level bucket warns.
	WarnWinRate float64
	// WarnMinCount is the minimum bucket size for the warning rule.
	WarnMinCount int
	// TimingEdge is the minimum percentage-point edge of the best timing
	// slot over the overall win rate.
	TimingEdge float64
	// ConfidenceSampleRef is the sample size at which the correlation
	// confidence scaling saturates.
	ConfidenceSampleRef int
}

// DefaultThresholds returns the production rule constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CorrelationThreshold: 0.3,
		StrongCorrelation:    0.5,
		WarnWinRate:          40,
		WarnMinCount:         5,
		TimingEdge:           10,
		ConfidenceSampleRef:  30,
	}
}

// Inputs carries the upstream analysis results the rules read.
type Inputs struct {
	Correlation    models.CorrelationResult
	Trends         []models.TrendPoint
	Conditions     models.OptimalConditions
	OverallWinRate float64
}

// Generate runs every rule and returns the insights sorted by priority
// descending, then confidence descending. When no rule fires a single
// non-actionable keep-tracking insight is returned instead of an empty
// list.
func Generate(in Inputs, th Thresholds) []models.Insight {
	var insights []models.Insight

	if ins, ok := correlationRule(in, th); ok {
		insights = append(insights, ins)
	}
	insights = append(insights, warningRule(in, th)...)
	if ins, ok := trendRule(in); ok {
		insights = append(insights, ins)
	}
	if ins, ok := timingRule(in, th); ok {
		insights = append(insights, ins)
	}

	if len(insights) == 0 {
		insights = append(insights, keepTracking())
	}

	sortInsights(insights)
	return insights
}

// correlationRule fires when |r| clears the threshold and the
// coefficient is statistically significant. Confidence scales |r| by how
// much of the reference sample size the data covers.
func correlationRule(in Inputs, th Thresholds) (models.Insight, bool) {
	corr := in.Correlation
	if corr.Undefined || !corr.IsStatisticallySignificant {
		return models.Insight{}, false
	}
	absR := math.Abs(corr.Coefficient)
	if absR < th.CorrelationThreshold {
		return models.Insight{}, false
	}

	priority := models.PriorityMedium
	if absR >= th.StrongCorrelation {
		priority = models.PriorityHigh
	}

	sampleFactor := math.Min(1, float64(corr.SampleSize)/float64(th.ConfidenceSampleRef))
	confidence := clampConfidence(sampleFactor * absR * 100)

	rng := in.Conditions.OptimalEmotionRange
	winRate := rangeWinRate(corr.PerLevelStats, rng)
	msg := fmt.Sprintf(
		"Your emotional state correlates with trading results (r=%.2f). You win %.0f%% of trades at emotion levels %d-%d.",
		corr.Coefficient, winRate, rng.Low, rng.High)

	return models.Insight{
		ID:         "performance-correlation",
		Kind:       models.KindPerformanceCorrelation,
		Message:    msg,
		Confidence: confidence,
		Priority:   priority,
		Actionable: true,
	}, true
}

// warningRule fires for every emotion level with enough trades and a win
// rate below the bar.
func warningRule(in Inputs, th Thresholds) []models.Insight {
	var out []models.Insight
	for _, s := range in.Correlation.PerLevelStats {
		if s.TradeCount < th.WarnMinCount || s.WinRate >= th.WarnWinRate {
			continue
		}
		confidence := clampConfidence(float64(s.TradeCount) * 10)
		out = append(out, models.Insight{
			ID:   fmt.Sprintf("warning-level-%d", s.Level),
			Kind: models.KindWarning,
			Message: fmt.Sprintf(
				"Only %.0f%% of your %d trades at emotion level %d win. Consider staying out of the market there.",
				s.WinRate, s.TradeCount, s.Level),
			Confidence: confidence,
			Priority:   models.PriorityHigh,
			Actionable: true,
		})
	}
	return out
}

// trendRule fires when at least two consecutive weeks share the same
// non-stable direction. The most recent qualifying run wins.
func trendRule(in Inputs) (models.Insight, bool) {
	runLen := 0
	var runDir models.TrendDirection
	bestLen := 0
	var bestDir models.TrendDirection

	for _, p := range in.Trends {
		if p.Direction == models.TrendStable {
			runLen = 0
			continue
		}
		if p.Direction == runDir {
			runLen++
		} else {
			runDir = p.Direction
			runLen = 1
		}
		if runLen >= 2 && runLen >= bestLen {
			bestLen = runLen
			bestDir = runDir
		}
	}
	if bestLen < 2 {
		return models.Insight{}, false
	}

	confidence := clampConfidence(50 + 10*float64(bestLen))
	var id, msg string
	if bestDir == models.TrendImproving {
		id = "trend-improving"
		msg = fmt.Sprintf("Your win rate has improved for %d consecutive weeks. Whatever you changed is working.", bestLen+1)
	} else {
		id = "trend-declining"
		msg = fmt.Sprintf("Your win rate has declined for %d consecutive weeks. Review what changed in your routine.", bestLen+1)
	}

	return models.Insight{
		ID:         id,
		Kind:       models.KindTrend,
		Message:    msg,
		Confidence: confidence,
		Priority:   models.PriorityMedium,
		Actionable: bestDir == models.TrendDeclining,
	}, true
}

// timingRule fires when the best timing slot beats the overall win rate
// by the configured edge. The sample floor is already enforced upstream:
// a slot below the floor never becomes BestMarketTiming.
func timingRule(in Inputs, th Thresholds) (models.Insight, bool) {
	best := in.Conditions.BestMarketTiming
	if best == nil {
		return models.Insight{}, false
	}
	edge := best.WinRate - in.OverallWinRate
	if edge < th.TimingEdge {
		return models.Insight{}, false
	}

	confidence := clampConfidence(edge * 5)
	msg := fmt.Sprintf(
		"Trades on %s around %02d:00 win %.0f%% of the time, %.0f points above your overall %.0f%%.",
		best.Day, best.Hour, best.WinRate, edge, in.OverallWinRate)

	return models.Insight{
		ID:         "timing-edge",
		Kind:       models.KindTiming,
		Message:    msg,
		Confidence: confidence,
		Priority:   models.PriorityLow,
		Actionable: true,
	}, true
}

func keepTracking() models.Insight {
	return models.Insight{
		ID:         "keep-tracking",
		Kind:       models.KindWarning,
		Message:    "Not enough data for reliable patterns yet. Keep logging your emotions and trades.",
		Confidence: 100,
		Priority:   models.PriorityLow,
		Actionable: false,
	}
}

// rangeWinRate returns the trade-weighted win rate of the levels inside
// the range.
func rangeWinRate(stats []models.EmotionLevelStat, rng models.EmotionRange) float64 {
	var weighted float64
	var count int
	for _, s := range stats {
		if !rng.Contains(s.Level) {
			continue
		}
		weighted += s.WinRate * float64(s.TradeCount)
		count += s.TradeCount
	}
	if count == 0 {
		return 0
	}
	return weighted / float64(count)
}

// sortInsights orders by priority descending, then confidence
// descending, with ID as a deterministic tie-break.
func sortInsights(insights []models.Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].Priority.Rank() != insights[j].Priority.Rank() {
			return insights[i].Priority.Rank() > insights[j].Priority.Rank()
		}
		if insights[i].Confidence != insights[j].Confidence {
			return insights[i].Confidence > insights[j].Confidence
		}
		return insights[i].ID < insights[j].ID
	})
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
