package handlers

import (
	"errors"

	"github.com/clouide/clouide/internal/logger"
	"github.com/clouide/clouide/internal/models"
	"github.com/clouide/clouide/internal/services"
	"github.com/clouide/clouide/internal/workspace"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, workspace.ErrInvalidSession), errors.Is(err, services.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNoCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, workspace.ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, workspace.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// detailFor is the client-facing message for err
func detailFor(err error) string {
	switch {
	case errors.Is(err, workspace.ErrInvalidSession):
		return "Invalid session id"
	case errors.Is(err, services.ErrNoCredentials):
		return "No credentials found. Please login first."
	case errors.Is(err, workspace.ErrAccessDenied):
		return "Access denied"
	case errors.Is(err, workspace.ErrNotFound):
		return "File not found"
	default:
		return err.Error()
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		logger.Errorf("❌ %s %s failed: %v", c.Method(), c.Path(), err)
	} else {
		logger.Debugf("%s %s rejected (%d): %v", c.Method(), c.Path(), status, err)
	}
	return c.Status(status).JSON(models.ErrorResponse{Detail: detailFor(err)})
}

// parseBody decodes the JSON body into out, reporting malformed input as a bad request
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return errors.Join(services.ErrInvalidRequest, err)
	}
	return nil
}

func success(c *fiber.Ctx, message string) error {
	return c.JSON(models.StatusResponse{Status: "success", Message: message})
}
