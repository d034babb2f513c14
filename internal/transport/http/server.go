// Package transporthttp exposes the broker workspace and signal operations
// over HTTP.
package transporthttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finboard/internal/broker"
	"finboard/internal/config/loader"
	"finboard/internal/logger"
	"finboard/internal/signal"

	"github.com/gin-gonic/gin"
)

// Server hosts the /api routes.
type Server struct {
	addr   string
	router *gin.Engine
}

// defaultSessionTTL applies when the config carries no session lifetime.
const defaultSessionTTL = 72 * time.Hour

// ServerConfig describes the server dependencies.
type ServerConfig struct {
	Addr       string
	Broker     *broker.Service
	Signals    *signal.Service
	Sessions   SessionStore
	Users      UserDirectory
	SessionTTL time.Duration
	Watchlist  *loader.WatchlistLoader
}

// NewServer builds the HTTP server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Broker == nil || cfg.Signals == nil {
		return nil, errors.New("http server requires broker and signal services")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("http server requires a session store")
	}
	if cfg.Users == nil {
		return nil, errors.New("http server requires a user directory")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8991"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := NewAuthRouter(cfg.Sessions, cfg.Users, cfg.SessionTTL)
	router.POST("/auth/login", auth.handleLogin)

	api := router.Group("/api", sessionAuth(cfg.Sessions))
	api.POST("/logout", auth.handleLogout)
	NewBrokerRouter(cfg.Broker, cfg.Watchlist).Register(api)
	NewSignalRouter(cfg.Signals).Register(api)

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves HTTP until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}
