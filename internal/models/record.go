// Package models defines the domain entities for the emotion-aware
// trading journal: the raw records supplied by the storage layer and the
// derived statistics returned by the analysis engine.
package models

import "time"

// EmotionContext describes when an emotional state was recorded.
type EmotionContext string

const (
	ContextPreTrade    EmotionContext = "pre-trade"
	ContextPostTrade   EmotionContext = "post-trade"
	ContextMarketEvent EmotionContext = "market-event"
)

// Valid reports whether the context is one of the defined values.
func (c EmotionContext) Valid() bool {
	switch c {
	case ContextPreTrade, ContextPostTrade, ContextMarketEvent:
		return true
	}
	return false
}

// TradeOutcome describes the result of a closed trade.
type TradeOutcome string

const (
	OutcomeWin       TradeOutcome = "win"
	OutcomeLoss      TradeOutcome = "loss"
	OutcomeBreakeven TradeOutcome = "breakeven"
)

// Valid reports whether the outcome is one of the defined values.
func (o TradeOutcome) Valid() bool {
	switch o {
	case OutcomeWin, OutcomeLoss, OutcomeBreakeven:
		return true
	}
	return false
}

// Emotion level bounds. Levels are self-reported on a 1-10 scale.
const (
	MinEmotionLevel = 1
	MaxEmotionLevel = 10
)

// EmotionRecord is a self-reported emotional state. Immutable once created.
type EmotionRecord struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     int            `json:"level"`
	Context   EmotionContext `json:"context"`
	Symbol    string         `json:"symbol,omitempty"`
	Note      string         `json:"note,omitempty"`
}

// Valid reports whether the record satisfies the input contract.
func (r EmotionRecord) Valid() bool {
	return r.Level >= MinEmotionLevel && r.Level <= MaxEmotionLevel &&
		r.Context.Valid() && !r.Timestamp.IsZero()
}

// TradeRecord is a closed trade with its outcome. Immutable once created.
// PnL is optional; a nil PnL means the trader logged only the outcome.
// EmotionID optionally links the trade to the emotion recorded for it.
type TradeRecord struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Symbol    string       `json:"symbol"`
	Outcome   TradeOutcome `json:"outcome"`
	PnL       *float64     `json:"pnl,omitempty"`
	EmotionID string       `json:"emotionId,omitempty"`
}

// Valid reports whether the record satisfies the input contract.
func (r TradeRecord) Valid() bool {
	return r.Outcome.Valid() && !r.Timestamp.IsZero()
}
