package service

import (
	"context"
	"fmt"
	"time"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
	"balloon-studio/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService places replenishment orders and drives their status state
// machine. Placing an order never touches stock; the replenishment worker
// credits inventory once the order reaches completed.
type OrderService struct {
	orders    OrderStore
	designs   DesignStore
	inventory *Inventory
	idem      IdemCache
	events    OrderEventSink
	pricing   Pricing
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders OrderStore,
	designs DesignStore,
	inventory *Inventory,
	idem IdemCache,
	events OrderEventSink,
	pricing Pricing,
) *OrderService {
	return &OrderService{
		orders:    orders,
		designs:   designs,
		inventory: inventory,
		idem:      idem,
		events:    events,
		pricing:   pricing,
		logger:    util.GetLogger(),
	}
}

// OrderLineRequest is one caller-supplied order line.
type OrderLineRequest struct {
	Color    string `json:"color" binding:"required"`
	Size     string `json:"size" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderRequest creates a replenishment order, either from explicit
// lines or from a design's unmet material requirements.
type PlaceOrderRequest struct {
	UserID               int64              `json:"user_id"`
	DesignID             *int64             `json:"design_id,omitempty"`
	Items                []OrderLineRequest `json:"items,omitempty"`
	SupplierName         string             `json:"supplierName" binding:"required"`
	Priority             string             `json:"priority"`
	ExpectedDeliveryDate string             `json:"expectedDeliveryDate,omitempty"`
	Notes                string             `json:"notes,omitempty"`
	IdempotencyKey       string             `json:"idempotency_key,omitempty"`
}

// KidOrderRequest is the simplified child-facing order form.
type KidOrderRequest struct {
	UserID    int64  `json:"user_id"`
	Color     string `json:"color" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	EventName string `json:"eventName,omitempty"`
}

// PlaceOrder creates a pending order. When req.Items is set the submitted
// quantities are used verbatim; otherwise the design's shortfall is ordered.
func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*models.Order, []models.OrderItem, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	} else if s.idem != nil {
		// Fast path: skip the DB lookup when the key was never seen.
		if seen, err := s.idem.CheckIdempotencyKey(ctx, req.IdempotencyKey); err == nil && seen {
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", req.IdempotencyKey))
		}
	}

	existing, err := s.orders.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil {
		items, err := s.orders.GetOrderItemsByOrderID(ctx, existing.ID)
		if err != nil {
			return nil, nil, err
		}
		return existing, items, nil
	}

	items, totalQty, totalCost, err := s.assembleItems(ctx, req)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, nil, err
	}

	expected, err := parseDeliveryDate(req.ExpectedDeliveryDate)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = "standard"
	}

	order := &models.Order{
		UserID:           req.UserID,
		DesignID:         req.DesignID,
		SupplierName:     req.SupplierName,
		Priority:         priority,
		Notes:            req.Notes,
		ExpectedDelivery: expected,
		Status:           models.OrderStatusPending,
		TotalQuantity:    totalQty,
		TotalCost:        totalCost,
		IdempotencyKey:   req.IdempotencyKey,
	}

	if err := s.orders.CreateOrderWithItems(ctx, order, items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.idem != nil {
		if err := s.idem.SetIdempotencyKey(ctx, req.IdempotencyKey, order.ID, 24*time.Hour); err != nil {
			s.logger.Warn("Failed to cache idempotency key", zap.Error(err))
		}
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int("total_quantity", order.TotalQuantity),
		zap.Int64("total_cost", order.TotalCost))

	s.publishPlaced(ctx, order, items)
	return order, items, nil
}

func (s *OrderService) assembleItems(ctx context.Context, req *PlaceOrderRequest) ([]models.OrderItem, int, int64, error) {
	if len(req.Items) > 0 {
		return buildItemsFromRequest(req.Items, s.pricing.Standard)
	}

	if req.DesignID == nil {
		return nil, 0, 0, domain.Validationf("items", "either items or design_id is required")
	}

	design, err := s.designs.GetDesignByID(ctx, *req.DesignID)
	if err != nil {
		return nil, 0, 0, err
	}
	if req.UserID != 0 && design.UserID != req.UserID {
		return nil, 0, 0, fmt.Errorf("design %d: %w", design.ID, domain.ErrAccessDenied)
	}

	requirements := design.MaterialRequirements
	if len(requirements) == 0 {
		requirements = ExtractRequirements(design.Elements)
	}
	if len(requirements) == 0 {
		return nil, 0, 0, domain.Validationf("design_id", "design %d has no material requirements", design.ID)
	}

	report, err := s.inventory.CheckAvailability(ctx, requirements)
	if err != nil {
		return nil, 0, 0, err
	}

	items, totalQty, totalCost := BuildOrderItems(report.Unavailable, s.pricing.Standard)
	if len(items) == 0 {
		return nil, 0, 0, domain.Validationf("design_id", "design %d has no unmet requirements", design.ID)
	}
	return items, totalQty, totalCost, nil
}

// PlaceKidOrder creates a pending order from the child-facing form. Color
// and size are checked against the fixed enumerations and the quantity is
// bounded to [1,100].
func (s *OrderService) PlaceKidOrder(ctx context.Context, req *KidOrderRequest) (*models.Order, []models.OrderItem, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceKidOrder")
	defer span.End()

	if !models.ValidColor(req.Color) {
		return nil, nil, domain.Validationf("color", "%q is not an available balloon color", req.Color)
	}
	if !models.ValidSize(req.Size) {
		return nil, nil, domain.Validationf("size", "%q is not a tracked balloon size", req.Size)
	}
	if req.Quantity < 1 || req.Quantity > 100 {
		return nil, nil, domain.Validationf("quantity", "must be between 1 and 100, got %d", req.Quantity)
	}

	unit := s.pricing.Kid.UnitPrice(req.Size)
	item := models.OrderItem{
		Color:     req.Color,
		Size:      req.Size,
		Quantity:  req.Quantity,
		UnitPrice: unit,
		Subtotal:  int64(req.Quantity) * unit,
	}

	notes := ""
	if req.EventName != "" {
		notes = "event: " + req.EventName
	}

	order := &models.Order{
		UserID:         req.UserID,
		SupplierName:   "storefront",
		Priority:       "standard",
		Notes:          notes,
		Status:         models.OrderStatusPending,
		TotalQuantity:  item.Quantity,
		TotalCost:      item.Subtotal,
		IdempotencyKey: uuid.New().String(),
	}

	items := []models.OrderItem{item}
	if err := s.orders.CreateOrderWithItems(ctx, order, items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersPlacedTotal.Inc()
	s.publishPlaced(ctx, order, items)
	return order, items, nil
}

// UpdateStatus applies a status transition after validating it against the
// transition table. The store update is conditional on the status the caller
// saw, so concurrent transitions cannot both win.
//
// Cancellation does not restore stock consumed into designs; it only stops a
// not-yet-completed replenishment from ever being credited.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, next, notes string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !ValidOrderStatus(next) {
		return nil, domain.Validationf("status", "%q is not a known order status", next)
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := CheckTransition(order.Status, next); err != nil {
		util.OrderTransitionsRejected.Inc()
		return nil, err
	}

	updated, err := s.orders.TransitionOrderStatus(ctx, orderID, order.Status, next, notes)
	if err != nil {
		return nil, err
	}

	util.OrderTransitionsTotal.WithLabelValues(next).Inc()
	s.logger.Info("Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", order.Status),
		zap.String("to", next))

	if s.events != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: newBaseEvent(models.EventTypeOrderStatusChanged),
			OrderID:   orderID,
			From:      order.Status,
			To:        next,
		}
		if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}

	return updated, nil
}

// GetOrder retrieves an order with its items
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.orders.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListOrders retrieves orders, scoped to a user when userID is non-zero
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	if userID != 0 {
		return s.orders.GetOrdersByUserID(ctx, userID)
	}
	return s.orders.ListOrders(ctx)
}

func (s *OrderService) publishPlaced(ctx context.Context, order *models.Order, items []models.OrderItem) {
	if s.events == nil {
		return
	}

	lines := make([]models.OrderLineData, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderLineData{
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	event := &models.OrderPlacedEvent{
		BaseEvent:     newBaseEvent(models.EventTypeOrderPlaced),
		OrderID:       order.ID,
		UserID:        order.UserID,
		DesignID:      order.DesignID,
		TotalQuantity: order.TotalQuantity,
		TotalCost:     order.TotalCost,
		Items:         lines,
	}
	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
}

func parseDeliveryDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Validationf("expectedDeliveryDate", "%q is not a valid date", s)
}
