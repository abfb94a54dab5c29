package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"balloon-studio/internal/models"
	"balloon-studio/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher publishes domain events to the order and stock topics.
type EventPublisher struct {
	orders *Producer
	stock  *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(orders, stock *Producer) *EventPublisher {
	return &EventPublisher{orders: orders, stock: stock}
}

// PublishOrderPlaced publishes an OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.orders.PublishEvent(ctx, key, event)
}

// PublishOrderStatusChanged publishes an OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.orders.PublishEvent(ctx, key, event)
}

// PublishStockConsumed publishes a StockConsumed event
func (ep *EventPublisher) PublishStockConsumed(ctx context.Context, event *models.StockConsumedEvent) error {
	key := fmt.Sprintf("stock-%s-%s", event.Color, event.Size)
	return ep.stock.PublishEvent(ctx, key, event)
}

// PublishStockReplenished publishes a StockReplenished event
func (ep *EventPublisher) PublishStockReplenished(ctx context.Context, event *models.StockReplenishedEvent) error {
	key := fmt.Sprintf("stock-%s-%s", event.Color, event.Size)
	return ep.stock.PublishEvent(ctx, key, event)
}

// PublishLowStock publishes a LowStock event
func (ep *EventPublisher) PublishLowStock(ctx context.Context, event *models.LowStockEvent) error {
	key := fmt.Sprintf("stock-%s-%s", event.Color, event.Size)
	return ep.stock.PublishEvent(ctx, key, event)
}

// EventHandler routes consumed messages to registered handlers by type.
type EventHandler struct {
	onOrderStatusChanged func(context.Context, *models.OrderStatusChangedEvent) error
	onStockConsumed      func(context.Context, *models.StockConsumedEvent) error
	onStockReplenished   func(context.Context, *models.StockReplenishedEvent) error
	onLowStock           func(context.Context, *models.LowStockEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderStatusChanged registers a handler for OrderStatusChanged events
func (eh *EventHandler) OnOrderStatusChanged(handler func(context.Context, *models.OrderStatusChangedEvent) error) {
	eh.onOrderStatusChanged = handler
}

// OnStockConsumed registers a handler for StockConsumed events
func (eh *EventHandler) OnStockConsumed(handler func(context.Context, *models.StockConsumedEvent) error) {
	eh.onStockConsumed = handler
}

// OnStockReplenished registers a handler for StockReplenished events
func (eh *EventHandler) OnStockReplenished(handler func(context.Context, *models.StockReplenishedEvent) error) {
	eh.onStockReplenished = handler
}

// OnLowStock registers a handler for LowStock events
func (eh *EventHandler) OnLowStock(handler func(context.Context, *models.LowStockEvent) error) {
	eh.onLowStock = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderStatusChanged:
		if eh.onOrderStatusChanged != nil {
			var event models.OrderStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderStatusChanged event: %w", err)
			}
			return eh.onOrderStatusChanged(ctx, &event)
		}

	case models.EventTypeStockConsumed:
		if eh.onStockConsumed != nil {
			var event models.StockConsumedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StockConsumed event: %w", err)
			}
			return eh.onStockConsumed(ctx, &event)
		}

	case models.EventTypeStockReplenished:
		if eh.onStockReplenished != nil {
			var event models.StockReplenishedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StockReplenished event: %w", err)
			}
			return eh.onStockReplenished(ctx, &event)
		}

	case models.EventTypeLowStock:
		if eh.onLowStock != nil {
			var event models.LowStockEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal LowStock event: %w", err)
			}
			return eh.onLowStock(ctx, &event)
		}

	default:
		util.GetLogger().Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
