package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthChecker reports the reachability of the store and the cache.
type HealthChecker interface {
	Health(ctx context.Context) (storeErr, cacheErr error)
}

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	checker HealthChecker
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker, timeout: 2 * time.Second}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 503 when the store is down. A down cache only
// degrades the service, since reads fall back to the store.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	storeErr, cacheErr := h.checker.Health(ctx)

	status, code := "healthy", fiber.StatusOK
	switch {
	case storeErr != nil:
		status, code = "unhealthy", fiber.StatusServiceUnavailable
	case cacheErr != nil:
		status = "degraded"
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
		"store":  componentStatus(storeErr),
		"cache":  componentStatus(cacheErr),
	})
}

func componentStatus(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
