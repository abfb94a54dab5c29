package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
	"balloon-studio/internal/service"
	"balloon-studio/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	inventory *service.Inventory
	designs   *service.DesignService
	orders    *service.OrderService
	payments  *service.PaymentService
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	inventory *service.Inventory,
	designs *service.DesignService,
	orders *service.OrderService,
	payments *service.PaymentService,
) *Handler {
	return &Handler{
		inventory: inventory,
		designs:   designs,
		orders:    orders,
		payments:  payments,
		logger:    util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/colors", h.listColors)

		v1.GET("/inventory", h.listInventory)
		v1.POST("/inventory", h.createStock)
		v1.PATCH("/inventory/:id", h.adjustStock)
		v1.GET("/inventory/color/:color", h.stockByColor)
		v1.POST("/inventory/check-availability", h.checkAvailability)

		v1.POST("/designs", h.createDesign)
		v1.GET("/designs", h.listDesigns)
		v1.GET("/designs/:id", h.getDesign)
		v1.GET("/designs/:id/availability", h.designAvailability)
		v1.POST("/designs/:id/save-to-inventory", h.saveToInventory)
		v1.POST("/designs/:id/order", h.orderForDesign)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.PATCH("/orders/:id", h.updateOrderStatus)
		v1.POST("/orders/balloon", h.kidOrder)
		v1.POST("/orders/:id/payment-intent", h.createPaymentIntent)

		v1.GET("/payment-intents", h.listPaymentIntents)
		v1.GET("/payment-intents/:id", h.getPaymentIntent)
		v1.PATCH("/payment-intents/:id", h.resolvePaymentIntent)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listColors returns the authoritative color table
func (h *Handler) listColors(c *gin.Context) {
	colors := make([]gin.H, 0)
	for _, name := range models.ColorNames() {
		colors = append(colors, gin.H{"name": name, "hex": models.ColorHex(name)})
	}
	c.JSON(http.StatusOK, gin.H{"colors": colors})
}

// respondError maps domain error kinds to HTTP statuses. Unexpected errors
// are logged and surfaced as a generic failure.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		vErr *domain.ValidationError
		sErr *domain.InsufficientStockError
		tErr *domain.InvalidTransitionError
	)

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
	case errors.As(err, &sErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "insufficient stock",
			"details":   err.Error(),
			"color":     sErr.Color,
			"size":      sErr.Size,
			"requested": sErr.Requested,
			"available": sErr.Available,
		})
	case errors.As(err, &tErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "invalid status transition",
			"details": err.Error(),
			"from":    tErr.From,
			"to":      tErr.To,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "details": err.Error()})
	case errors.Is(err, domain.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "details": err.Error()})
	default:
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// userID extracts the authenticated user from the X-User-ID header set by
// the auth layer in front of this service. Zero means unscoped.
func userID(c *gin.Context) int64 {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		raw = c.Query("user_id")
	}
	id, _ := strconv.ParseInt(raw, 10, 64)
	return id
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
