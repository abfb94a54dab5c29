package service

import (
	"balloon-studio/config"
	"balloon-studio/internal/models"
)

// PriceTable maps a balloon size to a unit price in cents. Prices vary by
// size only, never by color.
type PriceTable struct {
	Small int64
	Large int64
}

// UnitPrice returns the unit price for a size in cents.
func (p PriceTable) UnitPrice(size string) int64 {
	if size == models.SizeLarge {
		return p.Large
	}
	return p.Small
}

// Pricing holds every pricing tier the business uses. One table, injected
// from configuration; no handler carries its own price literals.
type Pricing struct {
	Standard PriceTable
	Kid      PriceTable
}

// DefaultPricing returns the built-in price tiers.
func DefaultPricing() Pricing {
	return Pricing{
		Standard: PriceTable{Small: 50, Large: 75},
		Kid:      PriceTable{Small: 199, Large: 299},
	}
}

// PricingFromConfig builds the pricing tiers from loaded configuration.
func PricingFromConfig(cfg config.PricingConfig) Pricing {
	return Pricing{
		Standard: PriceTable{Small: cfg.StandardSmall, Large: cfg.StandardLarge},
		Kid:      PriceTable{Small: cfg.KidSmall, Large: cfg.KidLarge},
	}
}
