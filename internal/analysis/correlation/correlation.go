// Package correlation computes the linear relationship between emotion
// level and trade outcome, plus the per-level statistics table and the
// statistical-significance gate over the coefficient.
package correlation

import (
	"math"

	"mindtrader/internal/analysis/aggregate"
	"mindtrader/internal/models"
)

// Outcome encoding for the dependent variable. PnL is preferred when any
// linked trade carries one; trades without pnl are then excluded from the
// correlation sample. When no linked trade has pnl the binary encoding
// below applies to all of them.
const (
	encodeWin       = 1.0
	encodeLoss      = 0.0
	encodeBreakeven = 0.5
)

// Compute derives the Pearson coefficient and per-level statistics from
// the aggregated snapshot. Per-level stats are always present for every
// level with at least one linked trade, independent of the coefficient.
//
// The coefficient is reported as undefined when the sample is smaller
// than minSample or when either axis has zero variance; it is never NaN.
func Compute(agg *aggregate.Result, minSample int) models.CorrelationResult {
	res := models.CorrelationResult{
		PerLevelStats: perLevelStats(agg),
	}

	xs, ys := encode(agg.Linked)
	res.SampleSize = len(xs)

	if res.SampleSize < minSample {
		res.Undefined = true
		return res
	}

	r, ok := pearson(xs, ys)
	if !ok {
		res.Undefined = true
		return res
	}

	res.Coefficient = r
	res.IsStatisticallySignificant = Significant(r, res.SampleSize, minSample)
	return res
}

// encode builds the (emotion level, outcome) sample pairs.
func encode(linked []aggregate.LinkedTrade) (xs, ys []float64) {
	usePnl := false
	for _, lt := range linked {
		if lt.Trade.PnL != nil {
			usePnl = true
			break
		}
	}

	for _, lt := range linked {
		var y float64
		if usePnl {
			if lt.Trade.PnL == nil {
				continue
			}
			y = *lt.Trade.PnL
		} else {
			switch lt.Trade.Outcome {
			case models.OutcomeWin:
				y = encodeWin
			case models.OutcomeLoss:
				y = encodeLoss
			case models.OutcomeBreakeven:
				y = encodeBreakeven
			}
		}
		xs = append(xs, float64(lt.Level))
		ys = append(ys, y)
	}
	return xs, ys
}

// pearson returns r = cov(x,y) / (stdDev(x) * stdDev(y)). The second
// return value is false when either variance is zero.
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	meanX := mean(xs)
	meanY := mean(ys)

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	r := (cov / n) / (math.Sqrt(varX/n) * math.Sqrt(varY/n))

	// Guard against float drift pushing r a hair outside [-1, 1].
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

func perLevelStats(agg *aggregate.Result) []models.EmotionLevelStat {
	stats := make([]models.EmotionLevelStat, 0, len(agg.Levels))
	for _, b := range agg.Levels {
		stats = append(stats, models.EmotionLevelStat{
			Level:          b.Level,
			TradeCount:     b.TradeCount,
			WinRate:        b.WinRate(),
			AveragePnl:     b.AveragePnl(),
			AverageEmotion: b.AverageEmotion(),
		})
	}
	return stats
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
