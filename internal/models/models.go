package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Balloon sizes. These are the only two sizes the business tracks.
const (
	SizeSmall = "11inch"
	SizeLarge = "16inch"
)

// Sizes lists every valid balloon size.
var Sizes = []string{SizeSmall, SizeLarge}

// ValidSize reports whether s is a tracked balloon size.
func ValidSize(s string) bool {
	return s == SizeSmall || s == SizeLarge
}

// Composition of a balloon cluster: the single authoritative accounting rule.
// Every cluster element contributes this fixed split to its primary color.
const (
	ClusterSmallBalloons = 11
	ClusterLargeBalloons = 2
)

// ElementTypeCluster is the design element type that consumes balloons.
const ElementTypeCluster = "balloon-cluster"

// DefaultThreshold is the low-stock threshold applied to stock records
// created implicitly (save-to-inventory, order fulfillment).
const DefaultThreshold = 20

// Stock statuses, derived from (quantity, threshold) and never stored.
const (
	StockInStock    = "in_stock"
	StockLowStock   = "low_stock"
	StockOutOfStock = "out_of_stock"
)

// StockStatus derives the status of a stock record. This is the only place
// the quantity/threshold rule lives.
func StockStatus(quantity, threshold int) string {
	switch {
	case quantity <= 0:
		return StockOutOfStock
	case quantity < threshold:
		return StockLowStock
	default:
		return StockInStock
	}
}

// StockRecord is the stock on hand for one (color, size) pair.
type StockRecord struct {
	ID        int64     `db:"id" json:"id"`
	Color     string    `db:"color" json:"color"`
	Size      string    `db:"size" json:"size"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Threshold int       `db:"threshold" json:"threshold"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Status derives the stock status from the current quantity and threshold.
func (r *StockRecord) Status() string {
	return StockStatus(r.Quantity, r.Threshold)
}

// MarshalJSON attaches the derived status so API payloads never carry a
// stale stored value.
func (r StockRecord) MarshalJSON() ([]byte, error) {
	type alias StockRecord
	return json.Marshal(struct {
		alias
		Status string `json:"status"`
	}{alias(r), r.Status()})
}

// ColorRequirement is the balloon count a design needs for one color.
type ColorRequirement struct {
	Small int `json:"small"`
	Large int `json:"large"`
}

// Availability statuses for a single requirement line.
const (
	AvailabilityAvailable   = "available"
	AvailabilityLow         = "low"
	AvailabilityUnavailable = "unavailable"
)

// AvailabilityLine is the result of checking one (color, size) requirement
// against stock. Difference may be negative; Status is unavailable exactly
// when it is.
type AvailabilityLine struct {
	Color      string `json:"color"`
	Size       string `json:"size"`
	Required   int    `json:"required"`
	InStock    int    `json:"inStock"`
	Difference int    `json:"difference"`
	Status     string `json:"status"`
}

// StockDelta is one line of a batch inventory mutation.
type StockDelta struct {
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// DesignElement is one item on the design canvas. Only cluster elements
// consume balloons; the rest (text, shapes) carry layout data only.
type DesignElement struct {
	Type     string   `json:"type"`
	Colors   []string `json:"colors"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Rotation float64  `json:"rotation"`
}

// DesignElements is a JSON column of canvas elements.
type DesignElements []DesignElement

func (e DesignElements) Value() (driver.Value, error) {
	return json.Marshal(e)
}

func (e *DesignElements) Scan(src interface{}) error {
	return scanJSON(src, e)
}

// Requirements is a JSON column snapshot of per-color balloon requirements.
type Requirements map[string]ColorRequirement

func (r Requirements) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *Requirements) Scan(src interface{}) error {
	return scanJSON(src, r)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
}

// Design is a saved canvas layout with its material requirement snapshot.
type Design struct {
	ID                   int64          `db:"id" json:"id"`
	UserID               int64          `db:"user_id" json:"user_id"`
	Name                 string         `db:"name" json:"name"`
	Elements             DesignElements `db:"elements" json:"elements"`
	MaterialRequirements Requirements   `db:"material_requirements" json:"material_requirements"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Order is a replenishment order. Stock is credited only when the order
// reaches completed, not at placement time. Money is integer cents.
type Order struct {
	ID               int64      `db:"id" json:"id"`
	UserID           int64      `db:"user_id" json:"user_id"`
	DesignID         *int64     `db:"design_id" json:"design_id,omitempty"`
	SupplierName     string     `db:"supplier_name" json:"supplier_name"`
	Priority         string     `db:"priority" json:"priority"`
	Notes            string     `db:"notes" json:"notes"`
	ExpectedDelivery *time.Time `db:"expected_delivery" json:"expected_delivery,omitempty"`
	Status           string     `db:"status" json:"status"`
	TotalQuantity    int        `db:"total_quantity" json:"total_quantity"`
	TotalCost        int64      `db:"total_cost" json:"total_cost"`
	IdempotencyKey   string     `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// OrderItem is one (color, size) line of an order. Subtotal = Quantity *
// UnitPrice, both in cents.
type OrderItem struct {
	ID        int64  `db:"id" json:"id"`
	OrderID   int64  `db:"order_id" json:"order_id"`
	Color     string `db:"color" json:"color"`
	Size      string `db:"size" json:"size"`
	Quantity  int    `db:"quantity" json:"quantity"`
	UnitPrice int64  `db:"unit_price" json:"unit_price"`
	Subtotal  int64  `db:"subtotal" json:"subtotal"`
}

// Payment intent statuses.
const (
	IntentStatusPending   = "pending"
	IntentStatusSucceeded = "succeeded"
	IntentStatusFailed    = "failed"
)

// PaymentIntent tracks a payment attempt for an order. Held in an injected
// store rather than a process-global map.
type PaymentIntent struct {
	ID        string    `json:"id"`
	OrderID   int64     `json:"order_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ProcessedEvent records an event a worker has already applied, for
// idempotent consumption.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
