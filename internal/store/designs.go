package store

import (
	"context"
	"database/sql"
	"fmt"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
)

// CreateDesign inserts a new design
func (s *Store) CreateDesign(ctx context.Context, design *models.Design) error {
	query := `
		INSERT INTO designs (user_id, name, elements, material_requirements)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, design, query,
		design.UserID, design.Name, design.Elements, design.MaterialRequirements)
}

// GetDesignByID retrieves a design by ID
func (s *Store) GetDesignByID(ctx context.Context, id int64) (*models.Design, error) {
	var design models.Design
	err := s.db.GetContext(ctx, &design, "SELECT * FROM designs WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("design %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &design, nil
}

// GetDesignsByUserID retrieves designs owned by a user, newest first
func (s *Store) GetDesignsByUserID(ctx context.Context, userID int64) ([]models.Design, error) {
	var designs []models.Design
	err := s.db.SelectContext(ctx, &designs,
		"SELECT * FROM designs WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return designs, err
}

// UpdateDesignRequirements stores the material requirement snapshot computed
// from the design's current elements.
func (s *Store) UpdateDesignRequirements(ctx context.Context, id int64, req models.Requirements) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE designs SET material_requirements = $2, updated_at = NOW() WHERE id = $1", id, req)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("design %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
