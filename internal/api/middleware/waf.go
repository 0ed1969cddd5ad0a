package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatewarden/gatewarden/internal/notify"
	"github.com/gatewarden/gatewarden/internal/pipeline"
	"github.com/gatewarden/gatewarden/internal/util"
	"github.com/gatewarden/gatewarden/internal/waf"
)

// WAF gates every request through the inspection pipeline. Requests to
// exempt prefixes pass untouched; rate-limited clients get 429, blocked
// requests get 403 with the reason. Those status codes are part of the
// observable contract with callers.
func WAF(p *pipeline.Pipeline, notifier *notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if p.Exempt(path) {
			c.Next()
			return
		}

		req := waf.Normalize(c.Request)
		verdict := p.Decide(c.Request.Context(), req, path)

		if verdict.Allowed {
			c.Next()
			return
		}

		entry := GetRequestLogger(c).WithFields(map[string]interface{}{
			"client_key": p.ClientKey(req),
			"method":     req.Method,
			"path":       util.SanitizeForLog(path),
			"reason":     verdict.Reason,
		})

		if verdict.Reason == waf.ReasonRateLimited {
			entry.Warn("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			return
		}

		entry.WithField("details", verdict.DetailFields()).Warn("request blocked")
		if notifier != nil {
			notifier.BlockAlert(p.ClientKey(req), verdict.Reason.Label(), path)
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":  "Request blocked by WAF",
			"reason": verdict.Reason.Label(),
		})
	}
}
