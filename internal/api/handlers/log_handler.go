package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatewarden/gatewarden/internal/services"
)

// LogHandler exposes the security audit log and dashboard statistics.
type LogHandler struct {
	audit   *services.AuditService
	domains *services.DomainService
}

// NewLogHandler creates a new log handler.
func NewLogHandler(audit *services.AuditService, domains *services.DomainService) *LogHandler {
	return &LogHandler{audit: audit, domains: domains}
}

// RegisterRoutes registers log and stats routes.
func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/logs", h.List)
	router.GET("/logs/export", h.Export)
	router.GET("/stats", h.Stats)
}

// List returns recent security logs with limit/offset paging.
func (h *LogHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.audit.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// Export streams security logs as CSV, optionally bounded by
// start_date/end_date (RFC 3339 or date-only).
func (h *LogHandler) Export(c *gin.Context) {
	start, ok := parseDateParam(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseDateParam(c, "end_date")
	if !ok {
		return
	}

	logs, err := h.audit.ListBetween(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch logs"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=security_logs.csv")
	c.Header("Content-Type", "text/csv")

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"timestamp", "client_ip", "request_path", "request_method", "reason", "details"})
	for _, row := range logs {
		_ = w.Write([]string{
			row.Timestamp.Format(time.RFC3339),
			row.ClientIP,
			row.RequestPath,
			row.RequestMethod,
			row.Reason,
			row.Details,
		})
	}
	w.Flush()
}

// Stats returns the dashboard summary.
func (h *LogHandler) Stats(c *gin.Context) {
	st, err := h.audit.Stats(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	total, active, err := h.domains.CountActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count domains"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_domains":    total,
		"active_domains":   active,
		"total_requests":   st.TotalRequests,
		"blocked_requests": st.BlockedRequests,
		"recent_attacks":   st.RecentAttacks,
		"top_attack_types": st.TopAttackTypes,
	})
}

func parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
	return nil, false
}
