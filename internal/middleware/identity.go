package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const UserIDHeader = "X-User-ID"

// Identity takes the acting user from the X-User-ID header and stores it as "userID".
// Session handling lives in front of this service.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(UserIDHeader)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user id"})
			return
		}

		userID, err := strconv.Atoi(header)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
