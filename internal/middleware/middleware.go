package middleware

import (
	"time"

	"github.com/dafailyasa/salt-be-test/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDKey is the Locals key holding the request id.
const RequestIDKey = "requestid"

// RequestID sets X-Request-ID on every response, reusing the incoming one.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: RequestIDKey,
	})
}

// RateLimiter allows max requests per client IP within window.
func RateLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"path":  c.OriginalURL(),
				"error": "Too Many Requests",
			})
		},
	})
}

// Recover turns panics into 500 responses and logs them.
func Recover(log logger.Logger) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Error("panic recovered",
				zap.Any("panic", e),
				zap.String("path", c.OriginalURL()),
				zap.Stack("stack"),
			)
		},
	})
}
