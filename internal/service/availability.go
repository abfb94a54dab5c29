package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
	"balloon-studio/internal/util"

	"go.uber.org/zap"
)

// EvaluateAvailability checks a requirement map against a stock snapshot and
// classifies every (color, size) line. For each color in the map a line is
// emitted for both sizes, even when one size needs zero balloons.
//
// Negative requirement counts are rejected rather than coerced; a malformed
// requirement must never silently become "zero needed".
//
// Output is sorted by color then size so repeated evaluation over unchanged
// input is identical.
func EvaluateAvailability(req models.Requirements, stock []models.StockRecord) ([]models.AvailabilityLine, string, error) {
	byKey := make(map[string]*models.StockRecord, len(stock))
	for i := range stock {
		byKey[stockKey(stock[i].Color, stock[i].Size)] = &stock[i]
	}

	colors := make([]string, 0, len(req))
	for color, r := range req {
		if r.Small < 0 || r.Large < 0 {
			return nil, "", domain.Validationf(color, "requirement counts must be non-negative (small=%d, large=%d)", r.Small, r.Large)
		}
		colors = append(colors, color)
	}
	sort.Strings(colors)

	lines := make([]models.AvailabilityLine, 0, 2*len(colors))
	for _, color := range colors {
		r := req[color]
		lines = append(lines,
			classifyLine(color, models.SizeSmall, r.Small, byKey),
			classifyLine(color, models.SizeLarge, r.Large, byKey),
		)
	}

	return lines, OverallStatus(lines), nil
}

func stockKey(color, size string) string {
	return strings.ToLower(color) + "|" + size
}

func classifyLine(color, size string, required int, byKey map[string]*models.StockRecord) models.AvailabilityLine {
	inStock := 0
	threshold := models.DefaultThreshold
	if rec, ok := byKey[stockKey(color, size)]; ok {
		inStock = rec.Quantity
		threshold = rec.Threshold
	}

	difference := inStock - required

	var status string
	switch {
	case difference < 0:
		status = models.AvailabilityUnavailable
	case inStock <= threshold:
		status = models.AvailabilityLow
	default:
		status = models.AvailabilityAvailable
	}

	return models.AvailabilityLine{
		Color:      strings.ToLower(color),
		Size:       size,
		Required:   required,
		InStock:    inStock,
		Difference: difference,
		Status:     status,
	}
}

// OverallStatus folds line statuses with the precedence
// unavailable > low > available.
func OverallStatus(lines []models.AvailabilityLine) string {
	overall := models.AvailabilityAvailable
	for _, l := range lines {
		switch l.Status {
		case models.AvailabilityUnavailable:
			return models.AvailabilityUnavailable
		case models.AvailabilityLow:
			overall = models.AvailabilityLow
		}
	}
	return overall
}

// AvailabilityReport is the full result of a design availability check.
type AvailabilityReport struct {
	Available     bool                                 `json:"available"`
	OverallStatus string                               `json:"overallStatus"`
	MissingItems  []string                             `json:"missingItems"`
	Lines         map[string][]models.AvailabilityLine `json:"inventoryStatus"`
	Unavailable   []models.AvailabilityLine            `json:"-"`
}

// Inventory serves stock reads and availability checks from the cached
// snapshot, falling back to the database when the cache is cold.
type Inventory struct {
	stock  StockReader
	writer StockWriter
	cache  StockCache
	logger *zap.Logger
}

// NewInventory creates a new inventory service
func NewInventory(stock StockReader, writer StockWriter, cache StockCache) *Inventory {
	return &Inventory{
		stock:  stock,
		writer: writer,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// Snapshot returns the current stock records, preferring the cache.
func (s *Inventory) Snapshot(ctx context.Context) ([]models.StockRecord, error) {
	records, err := s.cache.GetStockSnapshot(ctx)
	if err != nil {
		s.logger.Warn("Stock snapshot cache read failed, falling back to DB", zap.Error(err))
	} else if len(records) > 0 {
		return records, nil
	}
	return s.stock.ListStock(ctx)
}

// WarmCache loads the database stock into the snapshot cache.
func (s *Inventory) WarmCache(ctx context.Context) error {
	records, err := s.stock.ListStock(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stock: %w", err)
	}
	if err := s.cache.SyncStockSnapshot(ctx, records); err != nil {
		return fmt.Errorf("failed to sync stock snapshot: %w", err)
	}
	s.logger.Info("Stock snapshot cached", zap.Int("records", len(records)))
	return nil
}

// CheckAvailability evaluates a requirement map against current stock.
func (s *Inventory) CheckAvailability(ctx context.Context, req models.Requirements) (*AvailabilityReport, error) {
	ctx, span := util.StartSpan(ctx, "Inventory.CheckAvailability")
	defer span.End()

	stock, err := s.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}

	lines, overall, err := EvaluateAvailability(req, stock)
	if err != nil {
		return nil, err
	}

	report := &AvailabilityReport{
		Available:     overall != models.AvailabilityUnavailable,
		OverallStatus: overall,
		MissingItems:  []string{},
		Lines:         make(map[string][]models.AvailabilityLine),
	}
	for _, line := range lines {
		report.Lines[line.Color] = append(report.Lines[line.Color], line)
		if line.Status == models.AvailabilityUnavailable {
			report.Unavailable = append(report.Unavailable, line)
			report.MissingItems = append(report.MissingItems,
				fmt.Sprintf("%s %s: need %d, have %d", line.Color, line.Size, line.Required, line.InStock))
		}
	}

	util.AvailabilityChecksTotal.WithLabelValues(overall).Inc()
	return report, nil
}
