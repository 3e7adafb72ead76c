package transport

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imtaco/stream-orch-exp/internal/constants"
	"github.com/imtaco/stream-orch-exp/internal/jwt"
)

const payloadKey = "sessionTokenPayload"

// sessionAuth verifies the bearer token issued when the session or flow was
// created and pins it to the path ID, so one page view cannot drive another
// page view's state machine.
func sessionAuth(jwtAuth jwt.Auth, kind constants.TokenKind, uriParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Missing session token",
			})
			return
		}

		payload, err := jwtAuth.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid session token",
			})
			return
		}

		if payload.Kind != string(kind) || payload.SessionID != c.Param(uriParam) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Token does not match this session",
			})
			return
		}

		c.Set(payloadKey, payload)
		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to the token query
// parameter for websocket upgrades where headers cannot be set by browsers.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
