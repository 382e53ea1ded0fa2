package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	var (
		fiberErr *fiber.Error
		verrs    validator.ValidationErrors
		llmErr   *services.LLMError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &verrs),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidArtifactName),
		errors.Is(err, services.ErrUnsupportedFile),
		errors.Is(err, services.ErrNoResumes):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, services.ErrArtifactNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrLLMTimeout):
		return fiber.StatusGatewayTimeout
	case errors.As(err, &llmErr):
		if llmErr.Status == fiber.StatusTooManyRequests {
			return fiber.StatusTooManyRequests
		}
		return fiber.StatusBadGateway
	case errors.Is(err, services.ErrMalformedResponse):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// NewErrorHandler renders every error returned by a handler as
// {"error", "code"} and logs server-side failures.
func NewErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := errorStatus(err)

		msg := err.Error()
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msg = models.ValidationMessage(verrs)
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": msg,
			"code":  code,
		})
	}
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}
