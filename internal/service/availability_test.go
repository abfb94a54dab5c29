package service

import (
	"context"
	"testing"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findLine(t *testing.T, lines []models.AvailabilityLine, color, size string) models.AvailabilityLine {
	t.Helper()
	for _, l := range lines {
		if l.Color == color && l.Size == size {
			return l
		}
	}
	t.Fatalf("no line for %s %s", color, size)
	return models.AvailabilityLine{}
}

func TestEvaluateAvailabilityShortfall(t *testing.T) {
	stock := []models.StockRecord{
		{Color: "red", Size: models.SizeSmall, Quantity: 5, Threshold: 10},
	}
	req := models.Requirements{"red": {Small: 10}}

	lines, overall, err := EvaluateAvailability(req, stock)
	require.NoError(t, err)

	line := findLine(t, lines, "red", models.SizeSmall)
	assert.Equal(t, 10, line.Required)
	assert.Equal(t, 5, line.InStock)
	assert.Equal(t, -5, line.Difference)
	assert.Equal(t, models.AvailabilityUnavailable, line.Status)
	assert.Equal(t, models.AvailabilityUnavailable, overall)
}

func TestEvaluateAvailabilityLowStock(t *testing.T) {
	stock := []models.StockRecord{
		{Color: "blue", Size: models.SizeLarge, Quantity: 15, Threshold: 20},
	}
	req := models.Requirements{"blue": {Large: 3}}

	lines, overall, err := EvaluateAvailability(req, stock)
	require.NoError(t, err)

	line := findLine(t, lines, "blue", models.SizeLarge)
	assert.Equal(t, 12, line.Difference)
	assert.Equal(t, models.AvailabilityLow, line.Status)
	assert.Equal(t, models.AvailabilityLow, overall)
}

func TestEvaluateAvailabilityAvailable(t *testing.T) {
	stock := []models.StockRecord{
		{Color: "green", Size: models.SizeSmall, Quantity: 50, Threshold: 20},
		{Color: "green", Size: models.SizeLarge, Quantity: 50, Threshold: 20},
	}
	req := models.Requirements{"green": {Small: 5, Large: 5}}

	lines, overall, err := EvaluateAvailability(req, stock)
	require.NoError(t, err)

	small := findLine(t, lines, "green", models.SizeSmall)
	assert.Equal(t, 45, small.Difference)
	assert.Equal(t, models.AvailabilityAvailable, small.Status)
	assert.Equal(t, models.AvailabilityAvailable, overall)
}

func TestEvaluateAvailabilityEmitsBothSizes(t *testing.T) {
	stock := []models.StockRecord{
		{Color: "red", Size: models.SizeSmall, Quantity: 100, Threshold: 20},
		{Color: "red", Size: models.SizeLarge, Quantity: 100, Threshold: 20},
	}
	req := models.Requirements{"red": {Small: 11}}

	lines, _, err := EvaluateAvailability(req, stock)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	large := findLine(t, lines, "red", models.SizeLarge)
	assert.Equal(t, 0, large.Required)
	assert.Equal(t, 100, large.Difference)
}

func TestEvaluateAvailabilityMissingRecord(t *testing.T) {
	// No stock record at all: treated as zero on hand with the default
	// threshold, not as an error.
	lines, overall, err := EvaluateAvailability(models.Requirements{"purple": {Small: 3}}, nil)
	require.NoError(t, err)

	small := findLine(t, lines, "purple", models.SizeSmall)
	assert.Equal(t, 0, small.InStock)
	assert.Equal(t, -3, small.Difference)
	assert.Equal(t, models.AvailabilityUnavailable, small.Status)

	// The zero-required large line sits at the default threshold boundary.
	large := findLine(t, lines, "purple", models.SizeLarge)
	assert.Equal(t, models.AvailabilityLow, large.Status)

	assert.Equal(t, models.AvailabilityUnavailable, overall)
}

func TestEvaluateAvailabilityCaseInsensitiveColorMatch(t *testing.T) {
	stock := []models.StockRecord{
		{Color: "Red", Size: models.SizeSmall, Quantity: 30, Threshold: 10},
	}
	req := models.Requirements{"RED": {Small: 5}}

	lines, _, err := EvaluateAvailability(req, stock)
	require.NoError(t, err)

	line := findLine(t, lines, "red", models.SizeSmall)
	assert.Equal(t, 30, line.InStock)
	assert.Equal(t, models.AvailabilityAvailable, line.Status)
}

func TestEvaluateAvailabilityRejectsNegativeRequirement(t *testing.T) {
	_, _, err := EvaluateAvailability(models.Requirements{"red": {Small: -1}}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestEvaluateAvailabilityDeterministic(t *testing.T) {
	stock := []models.StockRecord{
		{Color: "red", Size: models.SizeSmall, Quantity: 5, Threshold: 10},
		{Color: "blue", Size: models.SizeLarge, Quantity: 40, Threshold: 10},
	}
	req := models.Requirements{
		"red":    {Small: 10},
		"blue":   {Large: 3},
		"yellow": {Small: 1},
	}

	first, firstOverall, err := EvaluateAvailability(req, stock)
	require.NoError(t, err)
	second, secondOverall, err := EvaluateAvailability(req, stock)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstOverall, secondOverall)

	// Sorted by color, sizes small-then-large within each color.
	assert.Equal(t, "blue", first[0].Color)
	assert.Equal(t, models.SizeSmall, first[0].Size)
	assert.Equal(t, "red", first[2].Color)
	assert.Equal(t, "yellow", first[4].Color)
}

func TestOverallStatusPrecedence(t *testing.T) {
	assert.Equal(t, models.AvailabilityAvailable, OverallStatus(nil))

	assert.Equal(t, models.AvailabilityLow, OverallStatus([]models.AvailabilityLine{
		{Status: models.AvailabilityAvailable},
		{Status: models.AvailabilityLow},
	}))

	assert.Equal(t, models.AvailabilityUnavailable, OverallStatus([]models.AvailabilityLine{
		{Status: models.AvailabilityLow},
		{Status: models.AvailabilityUnavailable},
		{Status: models.AvailabilityAvailable},
	}))
}

func TestInventoryCheckAvailability(t *testing.T) {
	stock := newFakeStockStore()
	stock.seed("red", models.SizeSmall, 5, 10)
	stock.seed("red", models.SizeLarge, 50, 10)
	inv := NewInventory(stock, stock, newFakeCache())

	report, err := inv.CheckAvailability(context.Background(), models.Requirements{
		"red": {Small: 11, Large: 2},
	})
	require.NoError(t, err)

	assert.False(t, report.Available)
	assert.Equal(t, models.AvailabilityUnavailable, report.OverallStatus)
	require.Len(t, report.Unavailable, 1)
	assert.Equal(t, models.SizeSmall, report.Unavailable[0].Size)
	assert.Equal(t, []string{"red 11inch: need 11, have 5"}, report.MissingItems)
	assert.Len(t, report.Lines["red"], 2)
}

func TestInventorySnapshotPrefersCache(t *testing.T) {
	stock := newFakeStockStore()
	stock.seed("red", models.SizeSmall, 5, 10)

	cache := newFakeCache()
	require.NoError(t, cache.PutStockRecord(context.Background(), &models.StockRecord{
		Color: "blue", Size: models.SizeLarge, Quantity: 7, Threshold: 10,
	}))

	inv := NewInventory(stock, stock, cache)
	records, err := inv.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "blue", records[0].Color)
}

func TestInventoryWarmCache(t *testing.T) {
	stock := newFakeStockStore()
	stock.seed("red", models.SizeSmall, 5, 10)
	stock.seed("blue", models.SizeLarge, 40, 10)

	cache := newFakeCache()
	inv := NewInventory(stock, stock, cache)
	require.NoError(t, inv.WarmCache(context.Background()))

	records, err := cache.GetStockSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
