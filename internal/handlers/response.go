package handlers

import (
	"errors"
	"fmt"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrGatewayUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// respondError writes err with the status it maps to.
func respondError(c *fiber.Ctx, message string, err error) error {
	status := statusFor(err)
	body := fiber.Map{"message": message, "error": err.Error()}
	if status == fiber.StatusInternalServerError {
		// storage errors carry driver details
		body["error"] = "internal error"
	}
	return c.Status(status).JSON(body)
}

// decode parses the JSON body into dst and runs its validate tags. It returns
// the response body for a 400 or nil when dst is usable.
func decode(c *fiber.Ctx, v *validator.Validate, dst any) fiber.Map {
	if err := c.BodyParser(dst); err != nil {
		return fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		}
	}
	if err := v.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fiber.Map{"message": "Validation failed", "error": err.Error()}
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		}
	}
	return nil
}

// currentActor reads the caller resolved by middleware.AuthRequired.
func currentActor(c *fiber.Ctx) services.Actor {
	userID, _ := c.Locals(middleware.LocalUserID).(string)
	role, _ := c.Locals(middleware.LocalRole).(string)
	return services.Actor{UserID: userID, Role: models.Role(role)}
}
