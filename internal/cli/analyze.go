// Package cli provides the command-line interface for the journal
// application.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mindtrader/internal/analysis"
	"mindtrader/internal/logging"
	"mindtrader/internal/models"
	"mindtrader/internal/store"
)

// addAnalysisCommands adds the analysis commands.
func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newTrendsCmd(app))
	rootCmd.AddCommand(newConditionsCmd(app))
	rootCmd.AddCommand(newInsightsCmd(app))
}

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Full emotion/performance analysis",
		Long: `Run the full analysis over your journal:
- Correlation between emotion level and trading results
- Per-emotion-level win rates
- Weekly performance trends
- Optimal, caution and avoid emotion ranges
- Best market timing
- Ranked insights`,
		Example: `  mindtrader analyze
  mindtrader analyze --from 2026-01-01 --to 2026-06-30
  mindtrader analyze --implicit-link --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			report, err := runAnalysis(cmd, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}

			renderCorrelation(output, report)
			output.Println()
			renderTrends(output, report.Trends)
			output.Println()
			renderConditions(output, report.Conditions)
			output.Println()
			renderInsights(output, report.Insights)
			output.Println()
			renderDiagnostics(output, report.Diagnostics)
			return nil
		},
	}
	addAnalysisFlags(cmd)
	return cmd
}

func newTrendsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Weekly performance trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			report, err := runAnalysis(cmd, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(report.Trends)
			}
			renderTrends(output, report.Trends)
			return nil
		},
	}
	addAnalysisFlags(cmd)
	return cmd
}

func newConditionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conditions",
		Short: "Optimal trading conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			report, err := runAnalysis(cmd, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(report.Conditions)
			}
			renderConditions(output, report.Conditions)
			return nil
		},
	}
	addAnalysisFlags(cmd)
	return cmd
}

func newInsightsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Ranked insights from your journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			report, err := runAnalysis(cmd, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(report.Insights)
			}
			renderInsights(output, report.Insights)
			return nil
		},
	}
	addAnalysisFlags(cmd)
	return cmd
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Bool("implicit-link", false, "link unlinked trades to the most recent preceding emotion record")
}

// runAnalysis loads the snapshot for the requested range and runs the
// engine over it.
func runAnalysis(cmd *cobra.Command, app *App) (*analysis.Report, error) {
	if app.Store == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if app.Engine == nil {
		return nil, fmt.Errorf("analysis engine not initialized, check configuration")
	}

	from, to, err := dateRangeFlags(cmd)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := app.Store.LoadSnapshot(ctx, from, to)
	if err != nil {
		return nil, err
	}

	engine := app.Engine
	if implicit, _ := cmd.Flags().GetBool("implicit-link"); implicit && !app.Config.Analysis.ImplicitLinking {
		cfg := app.Config.Analysis
		cfg.ImplicitLinking = true
		engine, err = analysis.NewEngine(cfg, logging.WithComponent(app.Logger, "engine"))
		if err != nil {
			return nil, err
		}
		defer engine.Close()
	}

	started := time.Now()
	report, err := engine.Analyze(ctx, *snap)
	if err != nil {
		return nil, err
	}
	logging.LogAnalysisRun(app.Logger, len(snap.Trades), len(snap.Emotions), len(report.Insights), time.Since(started))
	return report, nil
}

func dateRangeFlags(cmd *cobra.Command) (time.Time, time.Time, error) {
	var from, to time.Time
	if s, _ := cmd.Flags().GetString("from"); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			return from, to, fmt.Errorf("invalid --from date %q, expected YYYY-MM-DD", s)
		}
		from = t
	}
	if s, _ := cmd.Flags().GetString("to"); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			return from, to, fmt.Errorf("invalid --to date %q, expected YYYY-MM-DD", s)
		}
		// Inclusive end of day.
		to = t.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}

func storeEmotionFilter(from, to time.Time, limit int) store.EmotionFilter {
	return store.EmotionFilter{StartDate: from, EndDate: to, Limit: limit}
}

func storeTradeFilter(from, to time.Time, limit int) store.TradeFilter {
	return store.TradeFilter{StartDate: from, EndDate: to, Limit: limit}
}

func renderCorrelation(output *Output, report *analysis.Report) {
	corr := report.Correlation

	output.Bold("Emotion/Performance Correlation")
	if corr.Undefined {
		output.Printf("  Coefficient: undefined (insufficient samples or variance)\n")
	} else {
		output.Printf("  Coefficient: %.3f\n", corr.Coefficient)
	}
	output.Printf("  Sample size: %d\n", corr.SampleSize)
	significant := "no"
	if corr.IsStatisticallySignificant {
		significant = "yes (p < 0.05)"
	}
	output.Printf("  Significant: %s\n", significant)

	if len(corr.PerLevelStats) > 0 {
		output.Println()
		table := NewTable(output, "Level", "Trades", "Win rate", "Avg P&L")
		for _, s := range corr.PerLevelStats {
			table.AddRow(
				strconv.Itoa(s.Level),
				strconv.Itoa(s.TradeCount),
				FormatPercent(s.WinRate),
				output.FormatPnL(s.AveragePnl),
			)
		}
		table.Render()
	}
}

func renderTrends(output *Output, trends []models.TrendPoint) {
	output.Bold("Weekly Trends")
	if len(trends) == 0 {
		output.Dim("  No weeks with trades in range.")
		return
	}
	table := NewTable(output, "Week", "Avg emotion", "Win rate", "Total P&L", "Direction")
	for _, p := range trends {
		table.AddRow(
			FormatDate(p.WeekStart),
			fmt.Sprintf("%.1f", p.AverageEmotion),
			FormatPercent(p.WinRate),
			output.FormatPnL(p.TotalPnl),
			string(p.Direction),
		)
	}
	table.Render()
}

func renderConditions(output *Output, cond models.OptimalConditions) {
	output.Bold("Optimal Conditions")
	output.Printf("  Optimal emotion range: %s\n", FormatRange(cond.OptimalEmotionRange.Low, cond.OptimalEmotionRange.High))
	output.Printf("  Caution emotion range: %s\n", FormatRange(cond.CautionEmotionRange.Low, cond.CautionEmotionRange.High))
	output.Printf("  Avoid emotion range:   %s\n", FormatRange(cond.AvoidEmotionRange.Low, cond.AvoidEmotionRange.High))
	if cond.BestMarketTiming != nil {
		bt := cond.BestMarketTiming
		output.Printf("  Best timing:           %s %02d:00 (%s over %d trades)\n",
			bt.Day, bt.Hour, FormatPercent(bt.WinRate), bt.TradeCount)
	} else {
		output.Printf("  Best timing:           not enough per-slot data\n")
	}
	output.Printf("  Overall score:         %.0f/100\n", cond.OverallScore)
}

func renderInsights(output *Output, insights []models.Insight) {
	output.Bold("Insights")
	for _, ins := range insights {
		tag := output.ColoredString(output.PriorityColor(string(ins.Priority)), fmt.Sprintf("[%s]", ins.Priority))
		output.Printf("  %s %s\n", tag, ins.Message)
		output.Dim("      %s | confidence %s", ins.Kind, FormatConfidence(ins.Confidence))
	}
}

func renderDiagnostics(output *Output, diag models.Diagnostics) {
	output.Dim("%d emotion records, %d trades analyzed; %d unlinked trades; %d records excluded",
		diag.EmotionRecords, diag.TradeRecords, diag.UnlinkedTrades,
		diag.ExcludedEmotionRecords+diag.ExcludedTradeRecords)
}
