package service

import (
	"context"
	"time"

	"balloon-studio/internal/models"
)

// Store interfaces kept small so services can be exercised against in-memory
// fakes. *store.Store satisfies all of them.

// StockReader reads stock records.
type StockReader interface {
	ListStock(ctx context.Context) ([]models.StockRecord, error)
	GetStockByID(ctx context.Context, id int64) (*models.StockRecord, error)
	GetStockByColor(ctx context.Context, color string) ([]models.StockRecord, error)
	GetStockByColorSize(ctx context.Context, color, size string) (*models.StockRecord, error)
}

// StockWriter mutates stock records. Consume operations are atomic at the
// store level: the quantity guard and the decrement are one update.
type StockWriter interface {
	CreateStock(ctx context.Context, record *models.StockRecord) error
	UpdateStock(ctx context.Context, id int64, quantity, threshold int) (*models.StockRecord, error)
	ConsumeStock(ctx context.Context, color, size string, quantity int) (*models.StockRecord, error)
	ConsumeStockBatch(ctx context.Context, lines []models.StockDelta) ([]models.StockRecord, error)
	ReplenishStock(ctx context.Context, color, size string, quantity, defaultThreshold int) (*models.StockRecord, error)
}

// OrderStore persists orders and their items.
type OrderStore interface {
	CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	TransitionOrderStatus(ctx context.Context, orderID int64, from, to, notes string) (*models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error)
}

// DesignStore persists designs.
type DesignStore interface {
	CreateDesign(ctx context.Context, design *models.Design) error
	GetDesignByID(ctx context.Context, id int64) (*models.Design, error)
	GetDesignsByUserID(ctx context.Context, userID int64) ([]models.Design, error)
	UpdateDesignRequirements(ctx context.Context, id int64, req models.Requirements) error
}

// StockCache is the redis-backed stock snapshot. Postgres stays
// authoritative; a cold or failing cache falls back to the database.
type StockCache interface {
	GetStockSnapshot(ctx context.Context) ([]models.StockRecord, error)
	SyncStockSnapshot(ctx context.Context, records []models.StockRecord) error
	PutStockRecord(ctx context.Context, record *models.StockRecord) error
}

// IdemCache holds short-lived idempotency keys.
type IdemCache interface {
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	CheckIdempotencyKey(ctx context.Context, key string) (bool, error)
}

// IntentStore holds payment intents (get/put/list), replacing the original's
// process-global map.
type IntentStore interface {
	PutIntent(ctx context.Context, intent *models.PaymentIntent) error
	GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error)
	ListIntents(ctx context.Context) ([]models.PaymentIntent, error)
}

// StockEventSink publishes stock mutation events.
type StockEventSink interface {
	PublishStockConsumed(ctx context.Context, event *models.StockConsumedEvent) error
	PublishStockReplenished(ctx context.Context, event *models.StockReplenishedEvent) error
	PublishLowStock(ctx context.Context, event *models.LowStockEvent) error
}

// OrderEventSink publishes order lifecycle events.
type OrderEventSink interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}
