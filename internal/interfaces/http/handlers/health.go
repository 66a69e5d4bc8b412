// internal/interfaces/http/handlers/health.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/config"
)

// HealthChecker is a dependency that can report whether it is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	config    *config.Config
	checks    map[string]HealthChecker
	startedAt time.Time
}

// NewHealthHandler creates a health handler over the named dependencies
func NewHealthHandler(cfg *config.Config, checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{
		config:    cfg,
		checks:    checks,
		startedAt: time.Now(),
	}
}

// Health handles GET /health: every dependency must answer
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{}
	healthy := true
	for name, check := range h.checks {
		if err := check.Health(ctx); err != nil {
			healthy = false
			status[name] = "unhealthy: " + err.Error()
			continue
		}
		status[name] = "healthy"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":       "unhealthy",
			"dependencies": status,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"dependencies": status,
		"timestamp":    time.Now().UTC(),
		"version":      h.config.App.Version,
		"environment":  h.config.App.Environment,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	})
}
