package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userId, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set("userId", userId)
	c.Next()
}

// controlLimitMiddleware throttles start/stop with a shared token bucket.
func (h *Handler) controlLimitMiddleware(c *gin.Context) {
	if !h.control.Allow() {
		if h.log != nil {
			h.log.Infow("control_rate_limited", "path", c.FullPath())
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "too many start/stop requests",
		})
		return
	}
	c.Next()
}
