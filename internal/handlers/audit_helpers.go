package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"messenger-service/internal/observability"
	"messenger-service/internal/telemetry"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *int {
	if userID := c.GetInt("userID"); userID != 0 {
		return &userID
	}
	return nil
}

// auditDenied records a rejected chat action.
func auditDenied(c *gin.Context, emitter *telemetry.AuditEmitter, action string, chatID int, reason string) {
	text := fmt.Sprintf("%s denied: %s (ip=%s)", action, reason, observability.IPFromRequest(c.Request))
	emitter.Emit(c.Request.Context(), "WARN", text, requestIDFromContext(c), userIDFromContext(c), &chatID)
}
