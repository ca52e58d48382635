package handlers

import (
	"errors"

	"github.com/dafailyasa/salt-be-test/internal/services"
	"github.com/dafailyasa/salt-be-test/internal/validation"
	"github.com/dafailyasa/salt-be-test/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler maps service errors to HTTP responses of the form
// {"path": ..., "error": ...}. Validation failures also carry "errors".
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := fiber.Map{"path": c.OriginalURL()}
		status := fiber.StatusInternalServerError

		var (
			verr  *validation.Error
			perr  *services.PersistenceError
			fiErr *fiber.Error
		)
		switch {
		case errors.Is(err, services.ErrInvalidID):
			status = fiber.StatusBadRequest
			body["error"] = "Invalid mongo object id"
		case errors.Is(err, services.ErrNotFound):
			status = fiber.StatusNotFound
			body["error"] = "Product not found"
		case errors.As(err, &verr):
			status = fiber.StatusBadRequest
			body["error"] = "Validation failed"
			body["errors"] = verr.Fields
		case errors.As(err, &perr) && perr.ClientFault:
			status = fiber.StatusBadRequest
			body["error"] = perr.Error()
		case errors.As(err, &fiErr):
			status = fiErr.Code
			body["error"] = fiErr.Message
		default:
			body["error"] = "Internal Server Error"
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.OriginalURL()), zap.Error(err))
		}
		return c.Status(status).JSON(body)
	}
}
