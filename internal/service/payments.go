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

// PaymentService manages payment intents for orders. Intents live in an
// injected store so the service carries no process-global state.
type PaymentService struct {
	intents IntentStore
	orders  OrderStore
	logger  *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(intents IntentStore, orders OrderStore) *PaymentService {
	return &PaymentService{
		intents: intents,
		orders:  orders,
		logger:  util.GetLogger(),
	}
}

// CreateIntent opens a pending payment intent for an order's total cost.
func (s *PaymentService) CreateIntent(ctx context.Context, orderID int64) (*models.PaymentIntent, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.CreateIntent")
	defer span.End()

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.TotalCost <= 0 {
		return nil, domain.Validationf("order_id", "order %d has no cost to pay", orderID)
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, domain.Validationf("order_id", "order %d is cancelled", orderID)
	}

	intent := &models.PaymentIntent{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Amount:    order.TotalCost,
		Status:    models.IntentStatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.intents.PutIntent(ctx, intent); err != nil {
		return nil, fmt.Errorf("failed to store payment intent: %w", err)
	}

	util.PaymentIntentsTotal.WithLabelValues(models.IntentStatusPending).Inc()
	s.logger.Info("Payment intent created",
		zap.String("intent_id", intent.ID),
		zap.Int64("order_id", orderID),
		zap.Int64("amount", intent.Amount))
	return intent, nil
}

// GetIntent retrieves a payment intent by ID
func (s *PaymentService) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	intent, err := s.intents.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	if intent == nil {
		return nil, fmt.Errorf("payment intent %s: %w", id, domain.ErrNotFound)
	}
	return intent, nil
}

// ListIntents retrieves all payment intents
func (s *PaymentService) ListIntents(ctx context.Context) ([]models.PaymentIntent, error) {
	return s.intents.ListIntents(ctx)
}

// ResolveIntent marks a pending intent succeeded or failed. Resolved intents
// are final.
func (s *PaymentService) ResolveIntent(ctx context.Context, id, status string) (*models.PaymentIntent, error) {
	if status != models.IntentStatusSucceeded && status != models.IntentStatusFailed {
		return nil, domain.Validationf("status", "must be %q or %q, got %q",
			models.IntentStatusSucceeded, models.IntentStatusFailed, status)
	}

	intent, err := s.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	if intent.Status != models.IntentStatusPending {
		return nil, fmt.Errorf("payment intent %s already %s: %w", id, intent.Status, domain.ErrConflict)
	}

	intent.Status = status
	if err := s.intents.PutIntent(ctx, intent); err != nil {
		return nil, fmt.Errorf("failed to store payment intent: %w", err)
	}

	util.PaymentIntentsTotal.WithLabelValues(status).Inc()
	s.logger.Info("Payment intent resolved",
		zap.String("intent_id", id),
		zap.String("status", status))
	return intent, nil
}
