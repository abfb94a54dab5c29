package api

import (
	"net/http"

	"balloon-studio/internal/service"

	"github.com/gin-gonic/gin"
)

// createOrder places a replenishment order from explicit line items
func (h *Handler) createOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
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

// listOrders returns orders, scoped to the calling user when identified
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// getOrder returns one order with its items
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, items, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

type updateOrderRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// updateOrderStatus applies a status transition
func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// kidOrder handles the simplified child-facing order form
func (h *Handler) kidOrder(c *gin.Context) {
	var req service.KidOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.UserID == 0 {
		req.UserID = userID(c)
	}

	order, items, err := h.orders.PlaceKidOrder(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "items": items})
}
