package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gatewarden/gatewarden/internal/models"
	"github.com/gatewarden/gatewarden/internal/services"
)

// DomainHandler handles CRUD operations for protected domains.
type DomainHandler struct {
	service *services.DomainService
}

// NewDomainHandler creates a new domain handler.
func NewDomainHandler(db *gorm.DB) *DomainHandler {
	return &DomainHandler{service: services.NewDomainService(db)}
}

// RegisterRoutes registers domain routes.
func (h *DomainHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/domains", h.List)
	router.POST("/domains", h.Create)
	router.GET("/domains/:uuid", h.Get)
	router.PUT("/domains/:uuid", h.Update)
	router.DELETE("/domains/:uuid", h.Delete)
}

// List retrieves all protected domains.
func (h *DomainHandler) List(c *gin.Context) {
	domains, err := h.service.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch domains"})
		return
	}
	c.JSON(http.StatusOK, domains)
}

// Create adds a new protected domain.
func (h *DomainHandler) Create(c *gin.Context) {
	var input struct {
		DomainName    string `json:"domain_name" binding:"required"`
		TargetURL     string `json:"target_url" binding:"required"`
		SecurityLevel string `json:"security_level"`
		RateLimit     int    `json:"rate_limit"`
		IsActive      *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domain := models.Domain{
		DomainName:    input.DomainName,
		TargetURL:     input.TargetURL,
		SecurityLevel: input.SecurityLevel,
		RateLimit:     input.RateLimit,
		IsActive:      true,
	}
	if input.RateLimit == 0 {
		domain.RateLimit = 1000
	}
	if input.IsActive != nil {
		domain.IsActive = *input.IsActive
	}

	if err := h.service.Create(&domain); err != nil {
		if errors.Is(err, services.ErrDomainExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "domain already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create domain"})
		return
	}

	c.JSON(http.StatusCreated, domain)
}

// Get retrieves a domain by UUID.
func (h *DomainHandler) Get(c *gin.Context) {
	domain, err := h.service.GetByUUID(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "domain not found"})
		return
	}
	c.JSON(http.StatusOK, domain)
}

// Update applies partial changes to a domain.
func (h *DomainHandler) Update(c *gin.Context) {
	domain, err := h.service.GetByUUID(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "domain not found"})
		return
	}

	var input struct {
		DomainName    *string `json:"domain_name"`
		TargetURL     *string `json:"target_url"`
		SecurityLevel *string `json:"security_level"`
		RateLimit     *int    `json:"rate_limit"`
		IsActive      *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.DomainName != nil {
		domain.DomainName = *input.DomainName
	}
	if input.TargetURL != nil {
		domain.TargetURL = *input.TargetURL
	}
	if input.SecurityLevel != nil {
		domain.SecurityLevel = *input.SecurityLevel
	}
	if input.RateLimit != nil {
		domain.RateLimit = *input.RateLimit
	}
	if input.IsActive != nil {
		domain.IsActive = *input.IsActive
	}

	if err := h.service.Update(domain); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update domain"})
		return
	}
	c.JSON(http.StatusOK, domain)
}

// Delete removes a domain.
func (h *DomainHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("uuid")); err != nil {
		if errors.Is(err, services.ErrDomainNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "domain not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete domain"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "domain deleted successfully"})
}
