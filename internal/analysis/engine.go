package analysis

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"mindtrader/internal/analysis/aggregate"
	"mindtrader/internal/analysis/correlation"
	"mindtrader/internal/analysis/insight"
	"mindtrader/internal/analysis/optimize"
	"mindtrader/internal/analysis/trend"
	"mindtrader/internal/models"
	"mindtrader/pkg/parallel"
)

// Engine runs the analysis pipeline: aggregation, then correlation and
// trend detection in parallel, then condition optimization and insight
// generation over the joined results.
type Engine struct {
	cfg     Config
	weights optimize.Weights
	rules   insight.Thresholds
	logger  zerolog.Logger
	pool    *parallel.Pool
}

// NewEngine validates the configuration and constructs an engine.
// Invalid thresholds fail here, never during Analyze.
func NewEngine(cfg Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rules := insight.DefaultThresholds()
	rules.WarnWinRate = cfg.WarnWinRate
	rules.WarnMinCount = cfg.MinSample

	pool := parallel.NewPool(2)
	pool.Start()

	return &Engine{
		cfg:     cfg,
		weights: optimize.DefaultWeights(),
		rules:   rules,
		logger:  logger,
		pool:    pool,
	}, nil
}

// Close releases the engine's worker pool.
func (e *Engine) Close() {
	e.pool.Stop()
}

// Analyze computes a full report over the snapshot. Per-record anomalies
// are excluded and counted in the report diagnostics; the only error
// Analyze itself returns is context cancellation.
func (e *Engine) Analyze(ctx context.Context, snap Snapshot) (*Report, error) {
	agg := aggregate.Build(snap.Emotions, snap.Trades, snap.From, snap.To, aggregate.Options{
		ImplicitLinking: e.cfg.ImplicitLinking,
	})

	if n := agg.ExcludedEmotions + agg.ExcludedTrades; n > 0 {
		e.logger.Debug().
			Int("excluded_emotions", agg.ExcludedEmotions).
			Int("excluded_trades", agg.ExcludedTrades).
			Interface("reasons", agg.Reasons).
			Msg("Records excluded from analysis")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Correlation and trend detection only read the shared aggregates,
	// so they fan out. Inline execution when the pool is saturated keeps
	// the result identical either way.
	var (
		corrRes     models.CorrelationResult
		trendPoints []models.TrendPoint
		wg          sync.WaitGroup
	)
	run := func(f func()) {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			f()
		}
		if !e.pool.Submit(task) {
			task()
		}
	}
	run(func() { corrRes = correlation.Compute(agg, e.cfg.MinSample) })
	run(func() { trendPoints = trend.Detect(agg, e.cfg.TrendDelta) })
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conditions := optimize.Conditions(corrRes, agg, e.cfg.TimingMinSample, e.weights)

	insights := insight.Generate(insight.Inputs{
		Correlation:    corrRes,
		Trends:         trendPoints,
		Conditions:     conditions,
		OverallWinRate: agg.OverallWinRate(),
	}, e.rules)

	return &Report{
		Correlation: corrRes,
		Trends:      trendPoints,
		Conditions:  conditions,
		Insights:    insights,
		Diagnostics: diagnostics(agg),
	}, nil
}

func diagnostics(agg *aggregate.Result) models.Diagnostics {
	return models.Diagnostics{
		EmotionRecords:         agg.EmotionRecords,
		TradeRecords:           agg.TotalTrades,
		ExcludedEmotionRecords: agg.ExcludedEmotions,
		ExcludedTradeRecords:   agg.ExcludedTrades,
		UnlinkedTrades:         agg.UnlinkedTrades,
		ExclusionReasons:       agg.Reasons,
	}
}
