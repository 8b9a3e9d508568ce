// Package trend computes rolling weekly performance aggregates and
// classifies the week-over-week direction of change.
package trend

import (
	"time"

	"mindtrader/internal/analysis/aggregate"
	"mindtrader/internal/models"
)

// Detect emits one TrendPoint per week that saw at least one trade.
// Direction compares the win-rate delta between consecutive calendar
// weeks against deltaThreshold (percentage points): above it improving,
// below its negative declining, otherwise stable. Zero-trade weeks are
// gaps; a point on either side of a gap is not classified and reports
// stable, as does the first point.
func Detect(agg *aggregate.Result, deltaThreshold float64) []models.TrendPoint {
	points := make([]models.TrendPoint, 0, len(agg.Weeks))

	var prev *aggregate.WeekBucket
	for _, wb := range agg.Weeks {
		if wb.TradeCount == 0 {
			// Week holds only emotion records; it still breaks adjacency.
			prev = nil
			continue
		}

		direction := models.TrendStable
		if prev != nil && adjacent(prev.WeekStart, wb.WeekStart) {
			delta := wb.WinRate() - prev.WinRate()
			switch {
			case delta > deltaThreshold:
				direction = models.TrendImproving
			case delta < -deltaThreshold:
				direction = models.TrendDeclining
			}
		}

		points = append(points, models.TrendPoint{
			WeekStart:      wb.WeekStart,
			AverageEmotion: wb.AverageEmotion(),
			WinRate:        wb.WinRate(),
			TotalPnl:       wb.PnlSum,
			Direction:      direction,
		})
		prev = wb
	}
	return points
}

func adjacent(prevStart, curStart time.Time) bool {
	return prevStart.AddDate(0, 0, 7).Equal(curStart)
}
