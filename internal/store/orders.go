package store

import (
	"context"
	"database/sql"
	"fmt"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
)

// CreateOrderWithItems inserts an order and its line items in one transaction.
func (s *Store) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (user_id, design_id, supplier_name, priority, notes,
			expected_delivery, status, total_quantity, total_cost, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err = tx.GetContext(ctx, order, query,
		order.UserID, order.DesignID, order.SupplierName, order.Priority, order.Notes,
		order.ExpectedDelivery, order.Status, order.TotalQuantity, order.TotalCost,
		order.IdempotencyKey)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, color, size, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.GetContext(ctx, &items[i].ID, itemQuery,
			items[i].OrderID, items[i].Color, items[i].Size,
			items[i].Quantity, items[i].UnitPrice, items[i].Subtotal)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key, or nil
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE idempotency_key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// ListOrders retrieves all orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// TransitionOrderStatus updates an order status conditionally on the expected
// current status, so two racing transitions cannot both win.
func (s *Store) TransitionOrderStatus(ctx context.Context, orderID int64, from, to, notes string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, `
		UPDATE orders
		SET status = $3, notes = COALESCE(NULLIF($4, ''), notes), updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING *`, orderID, from, to, notes)
	if err == sql.ErrNoRows {
		// Lost the race: the status changed after the caller read it.
		return nil, fmt.Errorf("order %d no longer in status %s: %w", orderID, from, domain.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}
