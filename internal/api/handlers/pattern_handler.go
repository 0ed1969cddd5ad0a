package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gatewarden/gatewarden/internal/services"
)

// PatternHandler exposes the stored attack pattern catalog.
type PatternHandler struct {
	service *services.PatternService
}

// NewPatternHandler creates a new pattern handler.
func NewPatternHandler(db *gorm.DB) *PatternHandler {
	return &PatternHandler{service: services.NewPatternService(db)}
}

// RegisterRoutes registers pattern routes.
func (h *PatternHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/patterns", h.List)
}

// List returns all attack patterns.
func (h *PatternHandler) List(c *gin.Context) {
	patterns, err := h.service.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch patterns"})
		return
	}
	c.JSON(http.StatusOK, patterns)
}
