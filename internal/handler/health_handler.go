package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Pinger is a dependency whose reachability the health check reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the process and its backing services are up
type HealthHandler struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler checking deps by name
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps, timeout: 2 * time.Second}
}

// Check godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		g      errgroup.Group
		status = map[string]string{"status": "ok"}
		code   = http.StatusOK
	)
	// Pinged concurrently under one shared timeout
	for name, dep := range h.deps {
		g.Go(func() error {
			err := dep.Ping(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
				status[name] = "down"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				return nil
			}
			status[name] = "up"
			return nil
		})
	}
	_ = g.Wait()

	return c.JSON(code, status)
}
