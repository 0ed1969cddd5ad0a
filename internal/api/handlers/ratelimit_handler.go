package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatewarden/gatewarden/internal/ratelimit"
)

// RateLimitHandler exposes diagnostics over per-client rate-limit state.
type RateLimitHandler struct {
	limiter *ratelimit.Limiter
}

// NewRateLimitHandler creates a new rate limit handler.
func NewRateLimitHandler(limiter *ratelimit.Limiter) *RateLimitHandler {
	return &RateLimitHandler{limiter: limiter}
}

// RegisterRoutes registers rate limit routes.
func (h *RateLimitHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rate-limit/:key", h.Get)
	router.POST("/rate-limit/:key/reset", h.Reset)
}

// Get reports the current window count for a client key without recording
// a request.
func (h *RateLimitHandler) Get(c *gin.Context) {
	key := c.Param("key")
	c.JSON(http.StatusOK, gin.H{
		"client_key": key,
		"count":      h.limiter.CurrentCount(c.Request.Context(), key),
		"limit":      h.limiter.Limit(),
		"window":     h.limiter.Window().String(),
	})
}

// Reset clears all recorded requests for a client key.
func (h *RateLimitHandler) Reset(c *gin.Context) {
	key := c.Param("key")
	if err := h.limiter.Reset(c.Request.Context(), key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset rate limit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rate limit reset", "client_key": key})
}
