// Package optimize derives the trader's optimal conditions: the tertile
// partition of emotion levels by historical win rate, the best market
// timing slot, and a composite readiness score.
package optimize

import (
	"sort"

	"mindtrader/internal/analysis/aggregate"
	"mindtrader/internal/models"
)

// Weights defines the contribution of each term to the overall score.
type Weights struct {
	Correlation   float64
	OptimalRange  float64
	TimingWinRate float64
}

// DefaultWeights returns the fixed production weighting.
func DefaultWeights() Weights {
	return Weights{
		Correlation:   0.40,
		OptimalRange:  0.30,
		TimingWinRate: 0.30,
	}
}

// Conditions partitions the per-level stats into optimal, caution and
// avoid ranges, picks the best timing slot meeting the sample floor, and
// combines the three signals into a 0-100 readiness score.
//
// Tertiles are cut by trade population, not by level number: levels are
// sorted by win rate descending and each of the top and bottom groups
// absorbs roughly a third of all linked trades.
func Conditions(corr models.CorrelationResult, agg *aggregate.Result, timingMinSample int, weights Weights) models.OptimalConditions {
	var cond models.OptimalConditions

	optimal, caution, avoid := partition(corr.PerLevelStats)
	cond.OptimalEmotionRange = levelRange(optimal)
	cond.CautionEmotionRange = levelRange(caution)
	cond.AvoidEmotionRange = levelRange(avoid)
	cond.BestMarketTiming = bestTiming(agg, timingMinSample)

	corrTerm := 0.0
	if !corr.Undefined {
		if corr.Coefficient >= 0 {
			corrTerm = corr.Coefficient * 100
		} else {
			corrTerm = -corr.Coefficient * 100
		}
	}
	optTerm := groupWinRate(optimal)
	timingTerm := 0.0
	if cond.BestMarketTiming != nil {
		timingTerm = cond.BestMarketTiming.WinRate
	}

	score := weights.Correlation*corrTerm + weights.OptimalRange*optTerm + weights.TimingWinRate*timingTerm
	cond.OverallScore = clamp(score, 0, 100)
	return cond
}

// partition splits the level stats into population tertiles after
// sorting by win rate descending. Each of the outer groups holds at
// least one level when any stats exist; with fewer than three levels the
// middle group may be empty.
func partition(stats []models.EmotionLevelStat) (optimal, caution, avoid []models.EmotionLevelStat) {
	if len(stats) == 0 {
		return nil, nil, nil
	}

	sorted := make([]models.EmotionLevelStat, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].WinRate != sorted[j].WinRate {
			return sorted[i].WinRate > sorted[j].WinRate
		}
		return sorted[i].Level < sorted[j].Level
	})

	total := 0
	for _, s := range sorted {
		total += s.TradeCount
	}
	third := (total + 2) / 3

	i, cum := 0, 0
	for i < len(sorted) {
		optimal = append(optimal, sorted[i])
		cum += sorted[i].TradeCount
		i++
		if cum >= third {
			break
		}
	}

	j, cum := len(sorted)-1, 0
	for j >= i {
		avoid = append(avoid, sorted[j])
		cum += sorted[j].TradeCount
		j--
		if cum >= third {
			break
		}
	}

	caution = append(caution, sorted[i:j+1]...)
	return optimal, caution, avoid
}

// levelRange expresses a group as the min/max level values it spans.
func levelRange(group []models.EmotionLevelStat) models.EmotionRange {
	if len(group) == 0 {
		return models.EmotionRange{}
	}
	r := models.EmotionRange{Low: group[0].Level, High: group[0].Level}
	for _, s := range group[1:] {
		if s.Level < r.Low {
			r.Low = s.Level
		}
		if s.Level > r.High {
			r.High = s.Level
		}
	}
	return r
}

// groupWinRate returns the trade-weighted win rate of a group.
func groupWinRate(group []models.EmotionLevelStat) float64 {
	var weighted float64
	var count int
	for _, s := range group {
		weighted += s.WinRate * float64(s.TradeCount)
		count += s.TradeCount
	}
	if count == 0 {
		return 0
	}
	return weighted / float64(count)
}

// bestTiming returns the timing slot with the highest win rate among
// slots meeting the sample floor, or nil when none qualifies. Ties keep
// the earliest slot in the week.
func bestTiming(agg *aggregate.Result, minSample int) *models.TimingWindow {
	var best *aggregate.TimingBucket
	for _, tb := range agg.Timing {
		if tb.TradeCount < minSample {
			continue
		}
		if best == nil || tb.WinRate() > best.WinRate() {
			best = tb
		}
	}
	if best == nil {
		return nil
	}
	return &models.TimingWindow{
		Day:        best.Day.String(),
		Hour:       best.Hour,
		WinRate:    best.WinRate(),
		TradeCount: best.TradeCount,
	}
}

func clamp(value, minVal, maxVal float64) float64 {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}
