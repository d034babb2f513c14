package transporthttp

import (
	"context"
	"net/http"
	"strings"
	"time"

	"finboard/internal/logger"

	"github.com/gin-gonic/gin"
)

const userIDKey = "finboard.user_id"

// SessionSource resolves a bearer session token to a user id. Unknown or
// expired tokens report ok=false with no error.
type SessionSource interface {
	ResolveUser(ctx context.Context, token string) (string, bool, error)
}

// SessionStore additionally issues and revokes tokens; the login and logout
// handlers need the full surface while sessionAuth only resolves.
type SessionStore interface {
	SessionSource
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, token string) error
}

// sessionAuth rejects unauthenticated callers before any broker or store
// access happens.
func sessionAuth(sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		userID, ok, err := sessions.ResolveUser(c.Request.Context(), token)
		if err != nil {
			logger.Errorf("[api] session lookup failed ip=%s err=%v", c.ClientIP(), err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return header
}

func currentUserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
