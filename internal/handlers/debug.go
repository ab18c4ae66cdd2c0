package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/telemetry"
)

var auditLevels = map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}

// RegisterDebugRoutes wires debug-only endpoints. Nothing is mounted unless enabled.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	// emits one audit entry so operators can follow it through the broker
	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}

		level := strings.ToUpper(c.DefaultQuery("level", "INFO"))
		if !auditLevels[level] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown audit level"})
			return
		}
		requestID := requestIDFromContext(c)
		emitter.Emit(c.Request.Context(), level, c.DefaultQuery("text", "audit test"), requestID, userIDFromContext(c), nil)
		c.JSON(http.StatusOK, gin.H{"status": "ok", "request_id": requestID, "level": level})
	})
}
