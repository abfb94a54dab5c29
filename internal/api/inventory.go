package api

import (
	"net/http"

	"balloon-studio/internal/models"

	"github.com/gin-gonic/gin"
)

// listInventory returns every stock record with its derived status
func (h *Handler) listInventory(c *gin.Context) {
	records, err := h.inventory.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

type createStockRequest struct {
	Color     string `json:"color" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

// createStock creates a stock record for a new (color, size) pair
func (h *Handler) createStock(c *gin.Context) {
	var req createStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	record, err := h.inventory.CreateRecord(c.Request.Context(), req.Color, req.Size, req.Quantity, req.Threshold)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

type adjustStockRequest struct {
	Quantity  *int `json:"quantity" binding:"required"`
	Threshold *int `json:"threshold"`
}

// adjustStock applies a manual quantity/threshold edit
func (h *Handler) adjustStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	threshold := models.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	} else if current, err := h.inventory.Record(c.Request.Context(), id); err == nil {
		threshold = current.Threshold
	}

	record, err := h.inventory.AdjustRecord(c.Request.Context(), id, *req.Quantity, threshold)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// stockByColor returns the stock records for one color
func (h *Handler) stockByColor(c *gin.Context) {
	records, err := h.inventory.ByColor(c.Request.Context(), c.Param("color"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

type checkAvailabilityRequest struct {
	BalloonCounts models.Requirements `json:"balloonCounts" binding:"required"`
}

// checkAvailability classifies a requirement map against current stock
func (h *Handler) checkAvailability(c *gin.Context) {
	var req checkAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if len(req.BalloonCounts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": "balloonCounts must not be empty"})
		return
	}

	report, err := h.inventory.CheckAvailability(c.Request.Context(), req.BalloonCounts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available":       report.Available,
		"overallStatus":   report.OverallStatus,
		"missingItems":    report.MissingItems,
		"inventoryStatus": report.Lines,
	})
}
