// Package cli provides the command-line interface for the journal
// application.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mindtrader/internal/logging"
	"mindtrader/internal/models"
)

// addRecordCommands adds the journal ingest commands.
func addRecordCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log emotions and trades",
		Long:  "Record emotional states and trade outcomes in the journal.",
	}

	cmd.AddCommand(newLogEmotionCmd(app))
	cmd.AddCommand(newLogTradeCmd(app))
	cmd.AddCommand(newLogListCmd(app))

	rootCmd.AddCommand(cmd)
}

func newLogEmotionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emotion <level>",
		Short: "Log an emotional state (1-10)",
		Long: `Record your current emotional state on a 1-10 scale.

1 is calm and detached, 10 is maximum intensity (euphoria, panic, tilt).`,
		Example: `  mindtrader log emotion 7 --context pre-trade
  mindtrader log emotion 3 --context post-trade --symbol BTCUSD --note "revenge urge after stop-out"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Store not initialized.")
				return fmt.Errorf("store not initialized")
			}

			level, err := strconv.Atoi(args[0])
			if err != nil || level < models.MinEmotionLevel || level > models.MaxEmotionLevel {
				output.Error("Emotion level must be an integer between 1 and 10.")
				return fmt.Errorf("invalid emotion level: %s", args[0])
			}

			contextFlag, _ := cmd.Flags().GetString("context")
			symbol, _ := cmd.Flags().GetString("symbol")
			note, _ := cmd.Flags().GetString("note")
			at, _ := cmd.Flags().GetString("at")

			ts := time.Now().UTC()
			if at != "" {
				if ts, err = time.Parse(time.RFC3339, at); err != nil {
					output.Error("Invalid --at value, expected RFC3339 timestamp.")
					return err
				}
			}

			record := &models.EmotionRecord{
				ID:        uuid.NewString(),
				Timestamp: ts,
				Level:     level,
				Context:   models.EmotionContext(contextFlag),
				Symbol:    strings.ToUpper(symbol),
				Note:      note,
			}

			if err := app.Store.SaveEmotionRecord(ctx, record); err != nil {
				output.Error("Failed to save emotion record: %v", err)
				return err
			}

			logging.LogEmotionRecord(app.Logger, record.ID, record.Level, string(record.Context))

			if output.IsJSON() {
				return output.JSON(record)
			}
			output.Success("Recorded emotion level %d (%s)", level, contextFlag)
			output.Dim("ID: %s", record.ID)
			return nil
		},
	}

	cmd.Flags().String("context", string(models.ContextPreTrade), "pre-trade, post-trade or market-event")
	cmd.Flags().String("symbol", "", "symbol the emotion relates to")
	cmd.Flags().String("note", "", "free-form note")
	cmd.Flags().String("at", "", "record timestamp (RFC3339, default now)")
	return cmd
}

func newLogTradeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade <symbol> <outcome>",
		Short: "Log a trade outcome",
		Long: `Record a closed trade. Outcome is win, loss or breakeven.

Link the trade to an emotion record with --emotion-id to feed the
emotion/performance correlation.`,
		Example: `  mindtrader log trade BTCUSD win --pnl 125.50
  mindtrader log trade EURUSD loss --pnl -80 --emotion-id 4f7c...`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Store not initialized.")
				return fmt.Errorf("store not initialized")
			}

			outcome := models.TradeOutcome(strings.ToLower(args[1]))
			if !outcome.Valid() {
				output.Error("Outcome must be win, loss or breakeven.")
				return fmt.Errorf("invalid outcome: %s", args[1])
			}

			emotionID, _ := cmd.Flags().GetString("emotion-id")
			at, _ := cmd.Flags().GetString("at")

			ts := time.Now().UTC()
			if at != "" {
				var err error
				if ts, err = time.Parse(time.RFC3339, at); err != nil {
					output.Error("Invalid --at value, expected RFC3339 timestamp.")
					return err
				}
			}

			record := &models.TradeRecord{
				ID:        uuid.NewString(),
				Timestamp: ts,
				Symbol:    strings.ToUpper(args[0]),
				Outcome:   outcome,
				EmotionID: emotionID,
			}
			if cmd.Flags().Changed("pnl") {
				pnl, _ := cmd.Flags().GetFloat64("pnl")
				record.PnL = &pnl
			}

			if err := app.Store.SaveTradeRecord(ctx, record); err != nil {
				output.Error("Failed to save trade record: %v", err)
				return err
			}

			logging.LogTradeRecord(app.Logger, record.ID, record.Symbol, string(record.Outcome), emotionID != "")

			if output.IsJSON() {
				return output.JSON(record)
			}
			output.Success("Recorded %s %s", record.Symbol, record.Outcome)
			if record.PnL != nil {
				output.Printf("  P&L: %s\n", output.FormatPnL(*record.PnL))
			}
			output.Dim("ID: %s", record.ID)
			return nil
		},
	}

	cmd.Flags().Float64("pnl", 0, "profit/loss of the trade")
	cmd.Flags().String("emotion-id", "", "ID of the linked emotion record")
	cmd.Flags().String("at", "", "record timestamp (RFC3339, default now)")
	return cmd
}

func newLogListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent journal records",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Store not initialized.")
				return fmt.Errorf("store not initialized")
			}

			from, to, err := dateRangeFlags(cmd)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			emotions, err := app.Store.GetEmotionRecords(ctx, storeEmotionFilter(from, to, limit))
			if err != nil {
				output.Error("Failed to fetch emotion records: %v", err)
				return err
			}
			trades, err := app.Store.GetTradeRecords(ctx, storeTradeFilter(from, to, limit))
			if err != nil {
				output.Error("Failed to fetch trade records: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"emotions": emotions,
					"trades":   trades,
				})
			}

			output.Bold("Emotions (%d)", len(emotions))
			if len(emotions) > 0 {
				table := NewTable(output, "Time", "Level", "Context", "Symbol", "Note")
				for _, e := range emotions {
					table.AddRow(
						FormatDateTime(e.Timestamp),
						strconv.Itoa(e.Level),
						string(e.Context),
						e.Symbol,
						TruncateString(e.Note, 30),
					)
				}
				table.Render()
			}
			output.Println()

			output.Bold("Trades (%d)", len(trades))
			if len(trades) > 0 {
				table := NewTable(output, "Time", "Symbol", "Outcome", "P&L", "Linked")
				for _, t := range trades {
					pnl := "-"
					if t.PnL != nil {
						pnl = output.FormatPnL(*t.PnL)
					}
					linked := ""
					if t.EmotionID != "" {
						linked = "yes"
					}
					table.AddRow(
						FormatDateTime(t.Timestamp),
						t.Symbol,
						string(t.Outcome),
						pnl,
						linked,
					)
				}
				table.Render()
			}
			return nil
		},
	}

	cmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Int("limit", 50, "maximum records per kind")
	return cmd
}
