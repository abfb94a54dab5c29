package service

import (
	"strings"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
)

// BuildOrderItems turns the unavailable lines of an availability report into
// order line items. The default quantity per line is exactly the shortfall,
// max(0, -difference); lines with no shortfall are dropped. Returns the
// items plus the order totals in balloons and cents.
func BuildOrderItems(lines []models.AvailabilityLine, prices PriceTable) ([]models.OrderItem, int, int64) {
	items := make([]models.OrderItem, 0, len(lines))
	var totalQty int
	var totalCost int64

	for _, line := range lines {
		qty := -line.Difference
		if qty <= 0 {
			continue
		}

		unit := prices.UnitPrice(line.Size)
		item := models.OrderItem{
			Color:     line.Color,
			Size:      line.Size,
			Quantity:  qty,
			UnitPrice: unit,
			Subtotal:  int64(qty) * unit,
		}
		items = append(items, item)
		totalQty += item.Quantity
		totalCost += item.Subtotal
	}

	return items, totalQty, totalCost
}

// buildItemsFromRequest prices caller-supplied order lines verbatim. When the
// order form was edited, the submitted quantities win; nothing is recomputed
// from stock.
func buildItemsFromRequest(reqItems []OrderLineRequest, prices PriceTable) ([]models.OrderItem, int, int64, error) {
	if len(reqItems) == 0 {
		return nil, 0, 0, domain.Validationf("items", "at least one line is required")
	}

	items := make([]models.OrderItem, 0, len(reqItems))
	var totalQty int
	var totalCost int64

	for i, req := range reqItems {
		color := strings.ToLower(strings.TrimSpace(req.Color))
		if color == "" {
			return nil, 0, 0, domain.Validationf("items", "line %d: color must not be empty", i)
		}
		if !models.ValidSize(req.Size) {
			return nil, 0, 0, domain.Validationf("items", "line %d: %q is not a tracked balloon size", i, req.Size)
		}
		if req.Quantity <= 0 {
			return nil, 0, 0, domain.Validationf("items", "line %d: quantity must be positive, got %d", i, req.Quantity)
		}

		unit := prices.UnitPrice(req.Size)
		item := models.OrderItem{
			Color:     color,
			Size:      req.Size,
			Quantity:  req.Quantity,
			UnitPrice: unit,
			Subtotal:  int64(req.Quantity) * unit,
		}
		items = append(items, item)
		totalQty += item.Quantity
		totalCost += item.Subtotal
	}

	return items, totalQty, totalCost, nil
}
