package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/PratikDhanave/appstack-bridge/internal/auth"
	"github.com/PratikDhanave/appstack-bridge/internal/config"
	"github.com/PratikDhanave/appstack-bridge/internal/handlers"
	"github.com/PratikDhanave/appstack-bridge/internal/logging"
	"github.com/PratikDhanave/appstack-bridge/internal/plugin"
	"github.com/PratikDhanave/appstack-bridge/internal/store"
)

// NewRouter wires public endpoints and authenticated APIs.
// Public: /health, /ready
// Authenticated: /channels/:platform/:channel, /journal/*
func NewRouter(cfg config.Config, st store.Store, reg *plugin.Registry, logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(logger))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "platforms": reg.Platforms()})
	})

	// Readiness: confirms the journal store is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Auth group enforces tenant context via X-API-Key.
	authGroup := r.Group("/")
	authGroup.Use(auth.APIKeyMiddleware(cfg.APIKeys))

	handlers.RegisterChannelRoutes(authGroup, reg)
	handlers.RegisterJournalRoutes(authGroup, st)

	return r
}
