package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the common failure kinds. Handlers map these to HTTP
// statuses; services wrap them with context via fmt.Errorf("...: %w", ...).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrAccessDenied = errors.New("access denied")
	ErrConflict     = errors.New("conflict with current state")
)

// ValidationError reports malformed or missing input data.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Detail)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Detail)
}

// Validationf builds a ValidationError for the given field.
func Validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Detail: fmt.Sprintf(format, args...)}
}

// InsufficientStockError reports a consumption that would drive a stock
// quantity negative. Available is the quantity at the time of the attempt.
type InsufficientStockError struct {
	Color     string
	Size      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s %s: requested=%d, available=%d",
		e.Color, e.Size, e.Requested, e.Available)
}

// InvalidTransitionError reports an order status change outside the allowed
// transition table. Both states are named so the caller can see what was
// attempted.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: %s -> %s", e.From, e.To)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInsufficientStock reports whether err is (or wraps) an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var ie *InsufficientStockError
	return errors.As(err, &ie)
}

// IsInvalidTransition reports whether err is (or wraps) an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}
