package worker

import (
	"context"

	"balloon-studio/internal/broker"
	"balloon-studio/internal/models"
	"balloon-studio/internal/service"
	"balloon-studio/internal/util"

	"go.uber.org/zap"
)

// EventLog tracks processed event IDs so redelivered messages are applied
// once.
type EventLog interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// ReplenishmentWorker credits inventory when a replenishment order reaches
// completed. This is the "received" half of the order lifecycle: placing an
// order never restocks; fulfilling it does.
type ReplenishmentWorker struct {
	consumer   *broker.Consumer
	handler    *broker.EventHandler
	orders     service.OrderStore
	log        EventLog
	reconciler *service.Reconciler
	logger     *zap.Logger
}

// NewReplenishmentWorker creates a new replenishment worker
func NewReplenishmentWorker(
	consumer *broker.Consumer,
	orders service.OrderStore,
	log EventLog,
	reconciler *service.Reconciler,
) *ReplenishmentWorker {
	w := &ReplenishmentWorker{
		consumer:   consumer,
		handler:    broker.NewEventHandler(),
		orders:     orders,
		log:        log,
		reconciler: reconciler,
		logger:     util.GetLogger(),
	}
	w.handler.OnOrderStatusChanged(w.handleStatusChanged)
	return w
}

// Start starts the worker
func (w *ReplenishmentWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting replenishment worker")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop stops the worker
func (w *ReplenishmentWorker) Stop() error {
	w.logger.Info("Stopping replenishment worker")
	return w.consumer.Close()
}

func (w *ReplenishmentWorker) handleStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	if event.To != models.OrderStatusCompleted {
		return nil
	}

	processed, err := w.log.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	items, err := w.orders.GetOrderItemsByOrderID(ctx, event.OrderID)
	if err != nil {
		return err
	}

	for _, item := range items {
		record, err := w.reconciler.Replenish(ctx, item.Color, item.Size, item.Quantity)
		if err != nil {
			// Leave the event unprocessed so the message is redelivered.
			w.logger.Error("Failed to credit stock for fulfilled order",
				zap.Int64("order_id", event.OrderID),
				zap.String("color", item.Color),
				zap.String("size", item.Size),
				zap.Error(err))
			return err
		}
		w.logger.Info("Stock credited from fulfilled order",
			zap.Int64("order_id", event.OrderID),
			zap.String("color", record.Color),
			zap.String("size", record.Size),
			zap.Int("on_hand", record.Quantity))
	}

	return w.log.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// StockAlertWorker watches stock events and raises structured alerts when a
// mutation leaves a record low or out of stock. A notification channel can
// hang off this later; today it logs.
type StockAlertWorker struct {
	consumer *broker.Consumer
	handler  *broker.EventHandler
	logger   *zap.Logger
}

// NewStockAlertWorker creates a new stock alert worker
func NewStockAlertWorker(consumer *broker.Consumer) *StockAlertWorker {
	w := &StockAlertWorker{
		consumer: consumer,
		handler:  broker.NewEventHandler(),
		logger:   util.GetLogger(),
	}
	w.handler.OnLowStock(w.handleLowStock)
	return w
}

// Start starts the worker
func (w *StockAlertWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting stock alert worker")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop stops the worker
func (w *StockAlertWorker) Stop() error {
	w.logger.Info("Stopping stock alert worker")
	return w.consumer.Close()
}

func (w *StockAlertWorker) handleLowStock(ctx context.Context, event *models.LowStockEvent) error {
	w.logger.Warn("Low stock alert",
		zap.String("color", event.Color),
		zap.String("size", event.Size),
		zap.Int("quantity", event.Quantity),
		zap.Int("threshold", event.Threshold),
		zap.String("status", event.Status))
	return nil
}
