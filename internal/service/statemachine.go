package service

import (
	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
)

// orderTransitions is the complete order status transition table. Completed
// and cancelled are terminal.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCompleted, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusCompleted, models.OrderStatusCancelled},
	models.OrderStatusCompleted:  {},
	models.OrderStatusCancelled:  {},
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// CheckTransition validates an order status change against the transition
// table, returning InvalidTransition naming both states when it is not
// allowed.
func CheckTransition(from, to string) error {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &domain.InvalidTransitionError{From: from, To: to}
}
