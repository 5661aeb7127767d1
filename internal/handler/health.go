package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/todo-api/internal/config"
	"github.com/deppfellow/todo-api/internal/middleware"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth runs the configured dependency checks and answers 200 when the
// database is reachable, 503 otherwise. Redis only carries completion
// notifications, so a Redis failure is reported without failing the check.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	obs := h.server.Config.Observability
	if obs == nil {
		obs = config.DefaultObservabilityConfig()
	}

	checks := map[string]interface{}{}
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}
	isHealthy := true

	if obs.HealthCheckEnabled("database") && h.server.DB != nil {
		result, err := h.runCheck(obs.HealthChecks.Timeout, func(ctx context.Context) error {
			return h.server.DB.Pool.Ping(ctx)
		})
		checks["database"] = result
		if err != nil {
			isHealthy = false
			h.reportCheckFailure(&logger, "database", err, result)
		}
	}

	if obs.HealthCheckEnabled("redis") && h.server.Redis != nil {
		result, err := h.runCheck(obs.HealthChecks.Timeout, func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
		checks["redis"] = result
		if err != nil {
			h.reportCheckFailure(&logger, "redis", err, result)
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordEvent(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// runCheck runs ping with timeout and describes the outcome.
func (h *HealthHandler) runCheck(timeout time.Duration, ping func(ctx context.Context) error) (map[string]interface{}, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	checkStart := time.Now()
	err := ping(ctx)

	result := map[string]interface{}{
		"status":        "healthy",
		"response_time": time.Since(checkStart).String(),
	}
	if err != nil {
		result["status"] = "unhealthy"
		result["error"] = err.Error()
	}
	return result, err
}

func (h *HealthHandler) reportCheckFailure(logger *zerolog.Logger, check string, err error, result map[string]interface{}) {
	logger.Error().
		Err(err).
		Str("check", check).
		Interface("response_time", result["response_time"]).
		Msg("health check failed")

	h.recordEvent(map[string]interface{}{
		"check_type":    check,
		"operation":     "health_check",
		"error_type":    check + "_unhealthy",
		"error_message": err.Error(),
	})
}

// recordEvent sends a HealthCheckError custom event when New Relic is enabled.
func (h *HealthHandler) recordEvent(params map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", params)
	}
}
