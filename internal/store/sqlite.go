// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mindtrader/internal/analysis"
	apperrors "mindtrader/internal/errors"
	"mindtrader/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Self-reported emotional states
	CREATE TABLE IF NOT EXISTS emotion_records (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		level INTEGER NOT NULL CHECK (level BETWEEN 1 AND 10),
		context TEXT NOT NULL,
		symbol TEXT,
		note TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Closed trades with outcome and optional emotion link
	CREATE TABLE IF NOT EXISTS trade_records (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		outcome TEXT NOT NULL,
		pnl REAL,
		emotion_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (emotion_id) REFERENCES emotion_records(id)
	);

	CREATE INDEX IF NOT EXISTS idx_emotion_timestamp ON emotion_records(timestamp);
	CREATE INDEX IF NOT EXISTS idx_trade_timestamp ON trade_records(timestamp);
	CREATE INDEX IF NOT EXISTS idx_trade_symbol ON trade_records(symbol);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveEmotionRecord persists an emotion record. Records are immutable:
// inserting an existing ID is an error, not an update.
func (s *SQLiteStore) SaveEmotionRecord(ctx context.Context, record *models.EmotionRecord) error {
	if !record.Valid() {
		return apperrors.NewValidationError("emotion_record", record.ID, "level, context and timestamp must satisfy the input contract")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emotion_records (id, timestamp, level, context, symbol, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.Timestamp.UTC(), record.Level, string(record.Context),
		nullableString(record.Symbol), nullableString(record.Note),
	)
	if err != nil {
		return apperrors.NewStoreError("insert", "emotion_record", err)
	}
	return nil
}

// GetEmotionRecords returns emotion records matching the filter, ordered
// by timestamp ascending.
func (s *SQLiteStore) GetEmotionRecords(ctx context.Context, filter EmotionFilter) ([]models.EmotionRecord, error) {
	query := `SELECT id, timestamp, level, context, symbol, note FROM emotion_records WHERE 1=1`
	var args []interface{}

	if !filter.StartDate.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, filter.EndDate.UTC())
	}
	if filter.Context != "" {
		query += ` AND context = ?`
		args = append(args, string(filter.Context))
	}
	if filter.Symbol != "" {
		query += ` AND symbol = ?`
		args = append(args, strings.ToUpper(filter.Symbol))
	}
	query += ` ORDER BY timestamp ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "emotion_records", err)
	}
	defer rows.Close()

	var records []models.EmotionRecord
	for rows.Next() {
		r, err := scanEmotionRecord(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("scan", "emotion_records", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetEmotionRecordByID returns a single emotion record.
func (s *SQLiteStore) GetEmotionRecordByID(ctx context.Context, id string) (*models.EmotionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, level, context, symbol, note
		FROM emotion_records WHERE id = ?`, id)

	r, err := scanEmotionRecord(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrDataNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("query", "emotion_record", err)
	}
	return &r, nil
}

// SaveTradeRecord persists a trade record. A non-empty EmotionID must
// reference an existing emotion record.
func (s *SQLiteStore) SaveTradeRecord(ctx context.Context, record *models.TradeRecord) error {
	if !record.Valid() {
		return apperrors.NewValidationError("trade_record", record.ID, "outcome and timestamp must satisfy the input contract")
	}
	if record.EmotionID != "" {
		if _, err := s.GetEmotionRecordByID(ctx, record.EmotionID); err != nil {
			return apperrors.Wrapf(err, "emotion link %s", record.EmotionID)
		}
	}

	var pnl interface{}
	if record.PnL != nil {
		pnl = *record.PnL
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trade_records (id, timestamp, symbol, outcome, pnl, emotion_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.Timestamp.UTC(), strings.ToUpper(record.Symbol),
		string(record.Outcome), pnl, nullableString(record.EmotionID),
	)
	if err != nil {
		return apperrors.NewStoreError("insert", "trade_record", err)
	}
	return nil
}

// GetTradeRecords returns trade records matching the filter, ordered by
// timestamp ascending.
func (s *SQLiteStore) GetTradeRecords(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error) {
	query := `SELECT id, timestamp, symbol, outcome, pnl, emotion_id FROM trade_records WHERE 1=1`
	var args []interface{}

	if !filter.StartDate.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, filter.EndDate.UTC())
	}
	if filter.Symbol != "" {
		query += ` AND symbol = ?`
		args = append(args, strings.ToUpper(filter.Symbol))
	}
	if filter.Outcome != "" {
		query += ` AND outcome = ?`
		args = append(args, string(filter.Outcome))
	}
	query += ` ORDER BY timestamp ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "trade_records", err)
	}
	defer rows.Close()

	var records []models.TradeRecord
	for rows.Next() {
		var r models.TradeRecord
		var pnl sql.NullFloat64
		var emotionID, symbol sql.NullString
		if err := rows.Scan(&r.ID, &r.Timestamp, &symbol, (*string)(&r.Outcome), &pnl, &emotionID); err != nil {
			return nil, apperrors.NewStoreError("scan", "trade_records", err)
		}
		r.Symbol = symbol.String
		if pnl.Valid {
			v := pnl.Float64
			r.PnL = &v
		}
		r.EmotionID = emotionID.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// LoadSnapshot assembles the immutable engine input for a date range.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, from, to time.Time) (*analysis.Snapshot, error) {
	emotions, err := s.GetEmotionRecords(ctx, EmotionFilter{StartDate: from, EndDate: to})
	if err != nil {
		return nil, err
	}
	trades, err := s.GetTradeRecords(ctx, TradeFilter{StartDate: from, EndDate: to})
	if err != nil {
		return nil, err
	}
	return &analysis.Snapshot{
		Emotions: emotions,
		Trades:   trades,
		From:     from,
		To:       to,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmotionRecord(row rowScanner) (models.EmotionRecord, error) {
	var r models.EmotionRecord
	var symbol, note sql.NullString
	if err := row.Scan(&r.ID, &r.Timestamp, &r.Level, (*string)(&r.Context), &symbol, &note); err != nil {
		return models.EmotionRecord{}, err
	}
	r.Symbol = symbol.String
	r.Note = note.String
	return r, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
