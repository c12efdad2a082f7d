package middleware

import (
	"net/http"
	"time"

	"furniture-shop/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	SessionHeader = "X-Cart-Session"
	SessionKey    = "session_id"
)

// CartSession resolves the shopper's cart session from the X-Cart-Session
// header. A missing or invalid token gets a fresh session, returned in the
// same header.
func CartSession(secret string, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := c.GetHeader(SessionHeader); token != "" {
			claims, err := utils.ValidateSessionToken(secret, token)
			if err == nil {
				c.Set(SessionKey, claims.SessionID)
				c.Header(SessionHeader, token)
				c.Next()
				return
			}
			log.Debug("session token rejected", zap.Error(err))
		}

		token, sessionID, err := utils.GenerateSessionToken(secret, ttl)
		if err != nil {
			log.Error("issue session token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to start session",
			})
			return
		}
		c.Set(SessionKey, sessionID)
		c.Header(SessionHeader, token)
		c.Next()
	}
}

func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
