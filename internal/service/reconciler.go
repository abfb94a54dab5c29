package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
	"balloon-studio/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reconciler applies inventory mutations: debits when balloons are consumed
// into a design, credits when a replenishment order is fulfilled. All
// quantity changes go through the store's atomic conditional updates; the
// reconciler never reads a quantity and writes it back.
type Reconciler struct {
	stock            StockWriter
	cache            StockCache
	events           StockEventSink
	defaultThreshold int
	logger           *zap.Logger
}

// NewReconciler creates a new inventory reconciler
func NewReconciler(stock StockWriter, cache StockCache, events StockEventSink, defaultThreshold int) *Reconciler {
	if defaultThreshold <= 0 {
		defaultThreshold = models.DefaultThreshold
	}
	return &Reconciler{
		stock:            stock,
		cache:            cache,
		events:           events,
		defaultThreshold: defaultThreshold,
		logger:           util.GetLogger(),
	}
}

func validateDelta(color, size string, quantity int) error {
	if strings.TrimSpace(color) == "" {
		return domain.Validationf("color", "must not be empty")
	}
	if !models.ValidSize(size) {
		return domain.Validationf("size", "%q is not a tracked balloon size", size)
	}
	if quantity <= 0 {
		return domain.Validationf("quantity", "must be positive, got %d", quantity)
	}
	return nil
}

// Consume debits one (color, size) line. Fails with InsufficientStock when
// the debit would drive the quantity negative, leaving the record unchanged.
func (r *Reconciler) Consume(ctx context.Context, color, size string, quantity int) (*models.StockRecord, error) {
	ctx, span := util.StartSpan(ctx, "Reconciler.Consume")
	defer span.End()

	start := time.Now()
	defer func() { util.ReconcileLatency.Observe(time.Since(start).Seconds()) }()

	if err := validateDelta(color, size, quantity); err != nil {
		return nil, err
	}

	record, err := r.stock.ConsumeStock(ctx, color, size, quantity)
	if err != nil {
		if domain.IsInsufficientStock(err) {
			util.InsufficientStockTotal.Inc()
		}
		return nil, err
	}

	util.StockConsumedTotal.Add(float64(quantity))
	r.afterMutation(ctx, record)
	r.publishConsumed(ctx, record, quantity)
	return record, nil
}

// ConsumeAll debits a whole set of lines in one transaction: either every
// line is applied or none are, so a partial failure cannot leave inventory
// half-debited.
func (r *Reconciler) ConsumeAll(ctx context.Context, lines []models.StockDelta) ([]models.StockRecord, error) {
	ctx, span := util.StartSpan(ctx, "Reconciler.ConsumeAll")
	defer span.End()

	start := time.Now()
	defer func() { util.ReconcileLatency.Observe(time.Since(start).Seconds()) }()

	if len(lines) == 0 {
		return nil, domain.Validationf("lines", "nothing to consume")
	}
	for _, line := range lines {
		if err := validateDelta(line.Color, line.Size, line.Quantity); err != nil {
			return nil, err
		}
	}

	records, err := r.stock.ConsumeStockBatch(ctx, lines)
	if err != nil {
		if domain.IsInsufficientStock(err) {
			util.InsufficientStockTotal.Inc()
		}
		return nil, err
	}

	for i := range records {
		util.StockConsumedTotal.Add(float64(lines[i].Quantity))
		r.afterMutation(ctx, &records[i])
		r.publishConsumed(ctx, &records[i], lines[i].Quantity)
	}
	return records, nil
}

// Replenish credits one (color, size) line, creating the stock record with
// the default threshold when the pair has never been seen.
func (r *Reconciler) Replenish(ctx context.Context, color, size string, quantity int) (*models.StockRecord, error) {
	ctx, span := util.StartSpan(ctx, "Reconciler.Replenish")
	defer span.End()

	start := time.Now()
	defer func() { util.ReconcileLatency.Observe(time.Since(start).Seconds()) }()

	if err := validateDelta(color, size, quantity); err != nil {
		return nil, err
	}

	record, err := r.stock.ReplenishStock(ctx, color, size, quantity, r.defaultThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to replenish %s %s: %w", color, size, err)
	}

	util.StockReplenishedTotal.Add(float64(quantity))
	r.afterMutation(ctx, record)

	if r.events != nil {
		event := &models.StockReplenishedEvent{
			BaseEvent: newBaseEvent(models.EventTypeStockReplenished),
			Color:     record.Color,
			Size:      record.Size,
			Quantity:  quantity,
			OnHand:    record.Quantity,
		}
		if err := r.events.PublishStockReplenished(ctx, event); err != nil {
			r.logger.Error("Failed to publish StockReplenished event", zap.Error(err))
		}
	}
	return record, nil
}

// afterMutation refreshes the cached snapshot entry and raises a low-stock
// event when the record dropped to low or out of stock.
func (r *Reconciler) afterMutation(ctx context.Context, record *models.StockRecord) {
	if r.cache != nil {
		if err := r.cache.PutStockRecord(ctx, record); err != nil {
			r.logger.Warn("Failed to refresh stock snapshot entry",
				zap.String("color", record.Color),
				zap.String("size", record.Size),
				zap.Error(err))
		}
	}

	status := record.Status()
	if status == models.StockInStock {
		return
	}

	util.LowStockEventsTotal.Inc()
	if r.events != nil {
		event := &models.LowStockEvent{
			BaseEvent: newBaseEvent(models.EventTypeLowStock),
			Color:     record.Color,
			Size:      record.Size,
			Quantity:  record.Quantity,
			Threshold: record.Threshold,
			Status:    status,
		}
		if err := r.events.PublishLowStock(ctx, event); err != nil {
			r.logger.Error("Failed to publish LowStock event", zap.Error(err))
		}
	}
}

func (r *Reconciler) publishConsumed(ctx context.Context, record *models.StockRecord, quantity int) {
	if r.events == nil {
		return
	}
	event := &models.StockConsumedEvent{
		BaseEvent: newBaseEvent(models.EventTypeStockConsumed),
		Color:     record.Color,
		Size:      record.Size,
		Quantity:  quantity,
		Remaining: record.Quantity,
	}
	if err := r.events.PublishStockConsumed(ctx, event); err != nil {
		r.logger.Error("Failed to publish StockConsumed event", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
