package api

import (
	"net/http"

	"balloon-studio/internal/models"
	"balloon-studio/internal/service"

	"github.com/gin-gonic/gin"
)

// createDesign saves a canvas design
func (h *Handler) createDesign(c *gin.Context) {
	var req service.CreateDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.UserID == 0 {
		req.UserID = userID(c)
	}

	design, err := h.designs.CreateDesign(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, design)
}

// listDesigns returns the calling user's designs
func (h *Handler) listDesigns(c *gin.Context) {
	uid := userID(c)
	if uid == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	designs, err := h.designs.ListDesigns(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, designs)
}

// getDesign returns one design
func (h *Handler) getDesign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	design, err := h.designs.GetDesign(c.Request.Context(), id, userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, design)
}

// designAvailability checks a design's requirements against current stock
func (h *Handler) designAvailability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.designs.CheckDesignAvailability(c.Request.Context(), id, userID(c))
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

type saveToInventoryRequest struct {
	MaterialCounts models.Requirements `json:"materialCounts"`
}

// saveToInventory consumes a design's balloons out of stock atomically
func (h *Handler) saveToInventory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req saveToInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	records, err := h.designs.SaveToInventory(c.Request.Context(), id, userID(c), req.MaterialCounts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": records})
}

// orderForDesign places a replenishment order for a design's shortfall
func (h *Handler) orderForDesign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	req.DesignID = &id
	if req.UserID == 0 {
		req.UserID = userID(c)
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	order, items, err := h.orders.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "items": items})
}
