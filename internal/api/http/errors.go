package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-news-mood/internal/logger"
	"github.com/i474232898/weather-news-mood/internal/preferences"
	"github.com/i474232898/weather-news-mood/internal/store"
	"github.com/i474232898/weather-news-mood/internal/upstream"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve), errors.Is(err, preferences.ErrLastCategory):
		return fiber.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, upstream.ErrAuth):
		return fiber.StatusUnauthorized
	case errors.Is(err, upstream.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, upstream.ErrFetch), errors.Is(err, upstream.ErrNetwork):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	log = logger.Ensure(log)
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		msg := upstream.UserMessage(err)
		if code >= fiber.StatusInternalServerError {
			log.ErrorObj("request failed", "http_error", map[string]any{
				"method": c.Method(),
				"path":   c.Path(),
				"status": code,
				"error":  err.Error(),
			})
			if code == fiber.StatusInternalServerError {
				msg = "internal server error"
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": msg,
		})
	}
}
