package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
	"balloon-studio/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOrders implements service.OrderStore; only item lookup matters here.
type stubOrders struct {
	items map[int64][]models.OrderItem
}

func (s *stubOrders) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return nil
}

func (s *stubOrders) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	return nil, domain.ErrNotFound
}

func (s *stubOrders) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	return nil, nil
}

func (s *stubOrders) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrders) ListOrders(ctx context.Context) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrders) TransitionOrderStatus(ctx context.Context, orderID int64, from, to, notes string) (*models.Order, error) {
	return nil, domain.ErrNotFound
}

func (s *stubOrders) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	return s.items[orderID], nil
}

type memEventLog struct {
	processed map[string]string
}

func newMemEventLog() *memEventLog {
	return &memEventLog{processed: make(map[string]string)}
}

func (m *memEventLog) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	_, ok := m.processed[eventID]
	return ok, nil
}

func (m *memEventLog) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	m.processed[eventID] = eventType
	return nil
}

// stubStock implements service.StockWriter backed by a quantity map. failOn
// makes one (color, size) pair error so redelivery behavior can be checked.
type stubStock struct {
	quantities map[string]int
	failOn     string
}

func newStubStock() *stubStock {
	return &stubStock{quantities: make(map[string]int)}
}

func stockKey(color, size string) string {
	return strings.ToLower(color) + "|" + size
}

func (s *stubStock) CreateStock(ctx context.Context, record *models.StockRecord) error {
	s.quantities[stockKey(record.Color, record.Size)] = record.Quantity
	return nil
}

func (s *stubStock) UpdateStock(ctx context.Context, id int64, quantity, threshold int) (*models.StockRecord, error) {
	return nil, domain.ErrNotFound
}

func (s *stubStock) ConsumeStock(ctx context.Context, color, size string, quantity int) (*models.StockRecord, error) {
	return nil, domain.ErrNotFound
}

func (s *stubStock) ConsumeStockBatch(ctx context.Context, lines []models.StockDelta) ([]models.StockRecord, error) {
	return nil, domain.ErrNotFound
}

func (s *stubStock) ReplenishStock(ctx context.Context, color, size string, quantity, defaultThreshold int) (*models.StockRecord, error) {
	key := stockKey(color, size)
	if key == s.failOn {
		return nil, fmt.Errorf("replenish %s %s: connection reset", color, size)
	}
	s.quantities[key] += quantity
	return &models.StockRecord{
		Color:     strings.ToLower(color),
		Size:      size,
		Quantity:  s.quantities[key],
		Threshold: defaultThreshold,
	}, nil
}

func completedEvent(orderID int64, eventID string) *models.OrderStatusChangedEvent {
	return &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   eventID,
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		From:    models.OrderStatusShipped,
		To:      models.OrderStatusCompleted,
	}
}

func TestReplenishmentWorkerCreditsCompletedOrder(t *testing.T) {
	orders := &stubOrders{items: map[int64][]models.OrderItem{
		1: {
			{Color: "red", Size: models.SizeSmall, Quantity: 100},
			{Color: "red", Size: models.SizeLarge, Quantity: 20},
		},
	}}
	stock := newStubStock()
	log := newMemEventLog()
	w := NewReplenishmentWorker(nil, orders, log, service.NewReconciler(stock, nil, nil, 0))

	err := w.handleStatusChanged(context.Background(), completedEvent(1, "ev-1"))
	require.NoError(t, err)

	assert.Equal(t, 100, stock.quantities[stockKey("red", models.SizeSmall)])
	assert.Equal(t, 20, stock.quantities[stockKey("red", models.SizeLarge)])
	assert.Contains(t, log.processed, "ev-1")
}

func TestReplenishmentWorkerIgnoresNonCompleted(t *testing.T) {
	orders := &stubOrders{items: map[int64][]models.OrderItem{
		1: {{Color: "red", Size: models.SizeSmall, Quantity: 100}},
	}}
	stock := newStubStock()
	log := newMemEventLog()
	w := NewReplenishmentWorker(nil, orders, log, service.NewReconciler(stock, nil, nil, 0))

	event := completedEvent(1, "ev-2")
	event.To = models.OrderStatusCancelled

	require.NoError(t, w.handleStatusChanged(context.Background(), event))
	assert.Empty(t, stock.quantities)
	assert.Empty(t, log.processed)
}

func TestReplenishmentWorkerIdempotentOnRedelivery(t *testing.T) {
	orders := &stubOrders{items: map[int64][]models.OrderItem{
		1: {{Color: "red", Size: models.SizeSmall, Quantity: 100}},
	}}
	stock := newStubStock()
	log := newMemEventLog()
	w := NewReplenishmentWorker(nil, orders, log, service.NewReconciler(stock, nil, nil, 0))

	event := completedEvent(1, "ev-3")
	require.NoError(t, w.handleStatusChanged(context.Background(), event))
	require.NoError(t, w.handleStatusChanged(context.Background(), event))

	// The redelivered event must not credit twice.
	assert.Equal(t, 100, stock.quantities[stockKey("red", models.SizeSmall)])
}

func TestReplenishmentWorkerLeavesFailedEventUnprocessed(t *testing.T) {
	orders := &stubOrders{items: map[int64][]models.OrderItem{
		1: {
			{Color: "red", Size: models.SizeSmall, Quantity: 100},
			{Color: "blue", Size: models.SizeLarge, Quantity: 5},
		},
	}}
	stock := newStubStock()
	stock.failOn = stockKey("blue", models.SizeLarge)
	log := newMemEventLog()
	w := NewReplenishmentWorker(nil, orders, log, service.NewReconciler(stock, nil, nil, 0))

	err := w.handleStatusChanged(context.Background(), completedEvent(1, "ev-4"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.NotContains(t, log.processed, "ev-4")
}
