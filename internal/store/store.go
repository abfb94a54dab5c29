package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// ListStock retrieves all stock records
func (s *Store) ListStock(ctx context.Context) ([]models.StockRecord, error) {
	var records []models.StockRecord
	err := s.db.SelectContext(ctx, &records, "SELECT * FROM stock ORDER BY color, size")
	return records, err
}

// GetStockByID retrieves a stock record by ID
func (s *Store) GetStockByID(ctx context.Context, id int64) (*models.StockRecord, error) {
	var record models.StockRecord
	err := s.db.GetContext(ctx, &record, "SELECT * FROM stock WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stock record %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetStockByColor retrieves stock records for a color, case-insensitively
func (s *Store) GetStockByColor(ctx context.Context, color string) ([]models.StockRecord, error) {
	var records []models.StockRecord
	err := s.db.SelectContext(ctx, &records,
		"SELECT * FROM stock WHERE lower(color) = lower($1) ORDER BY size", color)
	return records, err
}

// GetStockByColorSize retrieves the stock record for a (color, size) pair
func (s *Store) GetStockByColorSize(ctx context.Context, color, size string) (*models.StockRecord, error) {
	var record models.StockRecord
	err := s.db.GetContext(ctx, &record,
		"SELECT * FROM stock WHERE lower(color) = lower($1) AND size = $2", color, size)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stock for %s %s: %w", color, size, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateStock creates a new stock record
func (s *Store) CreateStock(ctx context.Context, record *models.StockRecord) error {
	query := `
		INSERT INTO stock (color, size, quantity, threshold)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, record, query,
		record.Color, record.Size, record.Quantity, record.Threshold)
}

// UpdateStock sets quantity and threshold for a manual inventory edit
func (s *Store) UpdateStock(ctx context.Context, id int64, quantity, threshold int) (*models.StockRecord, error) {
	var record models.StockRecord
	err := s.db.GetContext(ctx, &record, `
		UPDATE stock SET quantity = $2, threshold = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING *`, id, quantity, threshold)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stock record %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ConsumeStock decrements a stock quantity with a conditional update, so a
// concurrent consumer can never drive the quantity negative.
func (s *Store) ConsumeStock(ctx context.Context, color, size string, quantity int) (*models.StockRecord, error) {
	record, err := consumeStock(ctx, s.db, color, size, quantity)
	if err != nil {
		return nil, err
	}
	return record, nil
}

type execGetter interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func consumeStock(ctx context.Context, q execGetter, color, size string, quantity int) (*models.StockRecord, error) {
	var record models.StockRecord
	err := q.GetContext(ctx, &record, `
		UPDATE stock SET quantity = quantity - $3, updated_at = NOW()
		WHERE lower(color) = lower($1) AND size = $2 AND quantity >= $3
		RETURNING *`, color, size, quantity)
	if err == nil {
		return &record, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	// Guard failed: either the record is missing or the stock is short.
	var current models.StockRecord
	err = q.GetContext(ctx, &current,
		"SELECT * FROM stock WHERE lower(color) = lower($1) AND size = $2", color, size)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stock for %s %s: %w", color, size, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return nil, &domain.InsufficientStockError{
		Color:     current.Color,
		Size:      current.Size,
		Requested: quantity,
		Available: current.Quantity,
	}
}

// ConsumeStockBatch applies a set of consumption lines in one transaction.
// Either every line is applied or none are.
func (s *Store) ConsumeStockBatch(ctx context.Context, lines []models.StockDelta) ([]models.StockRecord, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	records := make([]models.StockRecord, 0, len(lines))
	for _, line := range lines {
		record, err := consumeStock(ctx, tx, line.Color, line.Size, line.Quantity)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return records, nil
}

// ReplenishStock credits a stock quantity, creating the record with the
// default threshold when the (color, size) pair has never been seen.
func (s *Store) ReplenishStock(ctx context.Context, color, size string, quantity, defaultThreshold int) (*models.StockRecord, error) {
	var record models.StockRecord
	err := s.db.GetContext(ctx, &record, `
		INSERT INTO stock (color, size, quantity, threshold)
		VALUES (lower($1), $2, $3, $4)
		ON CONFLICT ((lower(color)), size)
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING *`, color, size, quantity, defaultThreshold)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
