package transporthttp

import (
	"context"
	"net/http"
	"strings"
	"time"

	"finboard/internal/logger"

	"github.com/gin-gonic/gin"
)

// UserDirectory resolves a login name to the owning user id.
type UserDirectory interface {
	UserByUsername(ctx context.Context, username string) (string, bool, error)
}

// AuthRouter issues and revokes session tokens. The session lifetime comes
// from configuration; per-user secrets are handled by the fronting identity
// layer, not this service.
type AuthRouter struct {
	sessions SessionStore
	users    UserDirectory
	ttl      time.Duration
}

func NewAuthRouter(sessions SessionStore, users UserDirectory, ttl time.Duration) *AuthRouter {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthRouter{sessions: sessions, users: users, ttl: ttl}
}

type loginRequest struct {
	Username string `json:"username"`
}

func (r *AuthRouter) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username required"})
		return
	}
	userID, ok, err := r.users.UserByUsername(c.Request.Context(), username)
	if err != nil {
		logger.Errorf("[auth] user lookup failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}
	token, err := r.sessions.Create(c.Request.Context(), userID, r.ttl)
	if err != nil {
		logger.Errorf("[auth] session create failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"user_id":    userID,
		"expires_in": int64(r.ttl.Seconds()),
	})
}

func (r *AuthRouter) handleLogout(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if err := r.sessions.Delete(c.Request.Context(), token); err != nil {
		logger.Errorf("[auth] session delete failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
