package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeStockConsumed      = "STOCK_CONSUMED"
	EventTypeStockReplenished   = "STOCK_REPLENISHED"
	EventTypeLowStock           = "LOW_STOCK"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderLineData represents one order line in events
type OrderLineData struct {
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// OrderPlacedEvent published when a replenishment order is created
type OrderPlacedEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	DesignID      *int64          `json:"design_id,omitempty"`
	TotalQuantity int             `json:"total_quantity"`
	TotalCost     int64           `json:"total_cost"`
	Items         []OrderLineData `json:"items"`
}

// OrderStatusChangedEvent published on every accepted status transition.
// The replenishment worker applies stock credits when To == completed.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// StockConsumedEvent published when balloons are consumed into a design
type StockConsumedEvent struct {
	BaseEvent
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Remaining int    `json:"remaining"`
}

// StockReplenishedEvent published when stock is credited
type StockReplenishedEvent struct {
	BaseEvent
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
	OnHand   int    `json:"on_hand"`
}

// LowStockEvent published when a mutation leaves a record low or out of stock
type LowStockEvent struct {
	BaseEvent
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
	Status    string `json:"status"`
}
