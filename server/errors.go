package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// errorEnvelope is the wire shape of every non-2xx response.
type errorEnvelope struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func statusFromCategory(cat errors.Category) int {
	switch cat {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// newErrorHandler maps rich errors onto the `{status, message}` envelope:
// "fail" for client errors, "error" for server errors. Production hides
// internal messages.
func newErrorHandler(logger Logger, production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := err.Error()
		var fields map[string]string

		var rich *errors.Error
		if errors.As(err, &rich) {
			status = statusFromCategory(rich.Category)
			message = rich.Message
			if vm := rich.ValidationMap(); len(vm) > 0 {
				fields = vm
			}
		} else if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
			message = fe.Message
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"error", err,
			)
			if production {
				message = "Something went very wrong!"
			}
		}

		statusText := "fail"
		if status >= fiber.StatusInternalServerError {
			statusText = "error"
		}

		return c.Status(status).JSON(errorEnvelope{
			Status:  statusText,
			Message: message,
			Errors:  fields,
		})
	}
}
