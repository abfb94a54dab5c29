package service

import (
	"context"
	"strings"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"

	"go.uber.org/zap"
)

// Admin operations on stock records: explicit creation and manual edits.
// Business mutations (consume/replenish) live on the Reconciler.

// CreateRecord creates a stock record for a (color, size) pair.
func (s *Inventory) CreateRecord(ctx context.Context, color, size string, quantity, threshold int) (*models.StockRecord, error) {
	color = strings.ToLower(strings.TrimSpace(color))
	if color == "" {
		return nil, domain.Validationf("color", "must not be empty")
	}
	if !models.ValidSize(size) {
		return nil, domain.Validationf("size", "%q is not a tracked balloon size", size)
	}
	if quantity < 0 {
		return nil, domain.Validationf("quantity", "must be non-negative, got %d", quantity)
	}
	if threshold < 0 {
		return nil, domain.Validationf("threshold", "must be non-negative, got %d", threshold)
	}
	if threshold == 0 {
		threshold = models.DefaultThreshold
	}

	record := &models.StockRecord{
		Color:     color,
		Size:      size,
		Quantity:  quantity,
		Threshold: threshold,
	}
	if err := s.writer.CreateStock(ctx, record); err != nil {
		return nil, err
	}

	s.refreshCache(ctx, record)
	s.logger.Info("Stock record created",
		zap.String("color", record.Color),
		zap.String("size", record.Size),
		zap.Int("quantity", record.Quantity))
	return record, nil
}

// AdjustRecord sets quantity and threshold for a manual inventory edit.
func (s *Inventory) AdjustRecord(ctx context.Context, id int64, quantity, threshold int) (*models.StockRecord, error) {
	if quantity < 0 {
		return nil, domain.Validationf("quantity", "must be non-negative, got %d", quantity)
	}
	if threshold < 0 {
		return nil, domain.Validationf("threshold", "must be non-negative, got %d", threshold)
	}

	record, err := s.writer.UpdateStock(ctx, id, quantity, threshold)
	if err != nil {
		return nil, err
	}

	s.refreshCache(ctx, record)
	return record, nil
}

// Record returns one stock record by ID.
func (s *Inventory) Record(ctx context.Context, id int64) (*models.StockRecord, error) {
	return s.stock.GetStockByID(ctx, id)
}

// ByColor returns the stock records for one color.
func (s *Inventory) ByColor(ctx context.Context, color string) ([]models.StockRecord, error) {
	if strings.TrimSpace(color) == "" {
		return nil, domain.Validationf("color", "must not be empty")
	}
	return s.stock.GetStockByColor(ctx, color)
}

func (s *Inventory) refreshCache(ctx context.Context, record *models.StockRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.PutStockRecord(ctx, record); err != nil {
		s.logger.Warn("Failed to refresh stock snapshot entry", zap.Error(err))
	}
}
