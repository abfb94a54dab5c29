package service

import (
	"context"
	"fmt"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
	"balloon-studio/internal/util"

	"go.uber.org/zap"
)

// DesignService manages canvas designs and the consumption of balloons into
// a finished design.
type DesignService struct {
	designs    DesignStore
	inventory  *Inventory
	reconciler *Reconciler
	logger     *zap.Logger
}

// NewDesignService creates a new design service
func NewDesignService(designs DesignStore, inventory *Inventory, reconciler *Reconciler) *DesignService {
	return &DesignService{
		designs:    designs,
		inventory:  inventory,
		reconciler: reconciler,
		logger:     util.GetLogger(),
	}
}

// CreateDesignRequest is the payload for saving a canvas design.
type CreateDesignRequest struct {
	UserID   int64                  `json:"user_id"`
	Name     string                 `json:"name" binding:"required"`
	Elements []models.DesignElement `json:"elements"`
}

// CreateDesign saves a design along with the material requirement snapshot
// derived from its elements.
func (s *DesignService) CreateDesign(ctx context.Context, req *CreateDesignRequest) (*models.Design, error) {
	ctx, span := util.StartSpan(ctx, "DesignService.CreateDesign")
	defer span.End()

	design := &models.Design{
		UserID:               req.UserID,
		Name:                 req.Name,
		Elements:             req.Elements,
		MaterialRequirements: ExtractRequirements(req.Elements),
	}

	if err := s.designs.CreateDesign(ctx, design); err != nil {
		return nil, fmt.Errorf("failed to create design: %w", err)
	}

	s.logger.Info("Design created",
		zap.Int64("design_id", design.ID),
		zap.Int("elements", len(design.Elements)))
	return design, nil
}

// GetDesign retrieves a design. When userID is non-zero, ownership is
// enforced.
func (s *DesignService) GetDesign(ctx context.Context, id, userID int64) (*models.Design, error) {
	design, err := s.designs.GetDesignByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != 0 && design.UserID != userID {
		return nil, fmt.Errorf("design %d: %w", id, domain.ErrAccessDenied)
	}
	return design, nil
}

// ListDesigns retrieves a user's designs
func (s *DesignService) ListDesigns(ctx context.Context, userID int64) ([]models.Design, error) {
	return s.designs.GetDesignsByUserID(ctx, userID)
}

// CheckDesignAvailability evaluates a design's requirements against stock.
func (s *DesignService) CheckDesignAvailability(ctx context.Context, id, userID int64) (*AvailabilityReport, error) {
	design, err := s.GetDesign(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	requirements := design.MaterialRequirements
	if len(requirements) == 0 {
		requirements = ExtractRequirements(design.Elements)
	}
	return s.inventory.CheckAvailability(ctx, requirements)
}

// SaveToInventory consumes a design's balloons out of stock in one atomic
// batch. counts overrides the design's own requirements when non-empty; a
// nil map means "consume exactly what the design needs".
func (s *DesignService) SaveToInventory(ctx context.Context, id, userID int64, counts models.Requirements) ([]models.StockRecord, error) {
	ctx, span := util.StartSpan(ctx, "DesignService.SaveToInventory")
	defer span.End()

	design, err := s.GetDesign(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if len(counts) == 0 {
		counts = design.MaterialRequirements
		if len(counts) == 0 {
			counts = ExtractRequirements(design.Elements)
		}
	}

	deltas, err := requirementsToDeltas(counts)
	if err != nil {
		return nil, err
	}
	if len(deltas) == 0 {
		return nil, domain.Validationf("materialCounts", "design %d needs no balloons", id)
	}

	records, err := s.reconciler.ConsumeAll(ctx, deltas)
	if err != nil {
		return nil, err
	}

	// Persist the consumed snapshot on the design for later order building.
	if err := s.designs.UpdateDesignRequirements(ctx, id, counts); err != nil {
		s.logger.Error("Failed to update design requirement snapshot",
			zap.Int64("design_id", id), zap.Error(err))
	}

	s.logger.Info("Design materials consumed",
		zap.Int64("design_id", id),
		zap.Int("lines", len(deltas)))
	return records, nil
}

// requirementsToDeltas flattens a requirement map into per-size consumption
// lines, skipping zero counts and rejecting negatives.
func requirementsToDeltas(counts models.Requirements) ([]models.StockDelta, error) {
	deltas := make([]models.StockDelta, 0, 2*len(counts))
	for color, r := range counts {
		if r.Small < 0 || r.Large < 0 {
			return nil, domain.Validationf(color, "requirement counts must be non-negative (small=%d, large=%d)", r.Small, r.Large)
		}
		if r.Small > 0 {
			deltas = append(deltas, models.StockDelta{Color: color, Size: models.SizeSmall, Quantity: r.Small})
		}
		if r.Large > 0 {
			deltas = append(deltas, models.StockDelta{Color: color, Size: models.SizeLarge, Quantity: r.Large})
		}
	}
	return deltas, nil
}
