package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"planner-service/internal/models"
	"planner-service/internal/services"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidProject), errors.Is(err, services.ErrEmptyIdea):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, services.ErrNotAnalyzed):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrExportUnavailable), errors.Is(err, services.ErrDurableUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, status int, message string, err error) error {
	body := fiber.Map{
		"error":   true,
		"message": message,
	}
	if err != nil {
		body["details"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid project id %q", c.Params("id"))
	}
	return id, nil
}
