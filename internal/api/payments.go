package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// createPaymentIntent opens a payment intent for an order
func (h *Handler) createPaymentIntent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	intent, err := h.payments.CreateIntent(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// listPaymentIntents returns every stored payment intent
func (h *Handler) listPaymentIntents(c *gin.Context) {
	intents, err := h.payments.ListIntents(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, intents)
}

// getPaymentIntent returns one payment intent
func (h *Handler) getPaymentIntent(c *gin.Context) {
	intent, err := h.payments.GetIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

type resolveIntentRequest struct {
	Status string `json:"status" binding:"required"`
}

// resolvePaymentIntent marks a pending intent succeeded or failed
func (h *Handler) resolvePaymentIntent(c *gin.Context) {
	var req resolveIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	intent, err := h.payments.ResolveIntent(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}
