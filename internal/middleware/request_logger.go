package middleware

import (
	"fmt"
	"time"

	"github.com/dafailyasa/salt-be-test/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request once the response is final:
// error for 5xx, warn for 4xx and info otherwise.
func RequestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			// Let the app error handler write the response so the logged status is final.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		msg := fmt.Sprintf("%s %s %s %s %d %s",
			c.Get(fiber.HeaderUserAgent),
			c.IP(),
			c.Method(),
			c.OriginalURL(),
			status,
			utils.StatusMessage(status),
		)
		fields := []zap.Field{
			zap.String("request_id", requestID(c)),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error(msg, fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn(msg, fields...)
		default:
			log.Info(msg, fields...)
		}
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(RequestIDKey).(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
