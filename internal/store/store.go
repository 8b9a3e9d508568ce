// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"mindtrader/internal/analysis"
	"mindtrader/internal/models"
)

// DataStore defines the interface for journal persistence. The analysis
// engine never touches it; LoadSnapshot is the single seam between
// storage and the pure computation core.
type DataStore interface {
	// Emotion records
	SaveEmotionRecord(ctx context.Context, record *models.EmotionRecord) error
	GetEmotionRecords(ctx context.Context, filter EmotionFilter) ([]models.EmotionRecord, error)
	GetEmotionRecordByID(ctx context.Context, id string) (*models.EmotionRecord, error)

	// Trade records
	SaveTradeRecord(ctx context.Context, record *models.TradeRecord) error
	GetTradeRecords(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error)

	// Snapshot assembly for the analysis engine
	LoadSnapshot(ctx context.Context, from, to time.Time) (*analysis.Snapshot, error)

	// Lifecycle
	Close() error
}

// EmotionFilter represents filters for querying emotion records.
type EmotionFilter struct {
	StartDate time.Time
	EndDate   time.Time
	Context   models.EmotionContext
	Symbol    string
	Limit     int
}

// TradeFilter represents filters for querying trade records.
type TradeFilter struct {
	StartDate time.Time
	EndDate   time.Time
	Symbol    string
	Outcome   models.TradeOutcome
	Limit     int
}
