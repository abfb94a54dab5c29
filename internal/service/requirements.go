package service

import (
	"strings"

	"balloon-studio/internal/models"
)

// ExtractRequirements computes the per-color balloon requirements of a set
// of canvas elements. Pure function; safe to call on every request.
//
// Accounting rule: each balloon-cluster element contributes a fixed 11 small
// + 2 large balloons, attributed entirely to its primary (first) color.
// Elements of other types, and clusters with no colors, contribute nothing.
func ExtractRequirements(elements []models.DesignElement) models.Requirements {
	req := models.Requirements{}

	for _, el := range elements {
		if el.Type != models.ElementTypeCluster || len(el.Colors) == 0 {
			continue
		}

		color := strings.ToLower(strings.TrimSpace(el.Colors[0]))
		if color == "" {
			continue
		}

		r := req[color]
		r.Small += models.ClusterSmallBalloons
		r.Large += models.ClusterLargeBalloons
		req[color] = r
	}

	return req
}
