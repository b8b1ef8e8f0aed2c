package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Concesionario-api/internal/application/dto"
	"github.com/jhoicas/Concesionario-api/internal/domain"
)

// errorWriter traduce errores de dominio a respuestas HTTP. Es el único lugar
// donde se decide el status de un error.
type errorWriter struct {
	log            zerolog.Logger
	exposeInternal bool
}

func (w errorWriter) write(c *fiber.Ctx, err error) error {
	status, body := w.classify(err)
	if status == fiber.StatusInternalServerError {
		w.log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error interno atendiendo la petición")
	}
	return c.Status(status).JSON(body)
}

func (w errorWriter) classify(err error) (int, dto.ErrorResponse) {
	var (
		verr *domain.ValidationError
		ferr *domain.ForbiddenError
	)
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Error: "validación fallida", Details: verr.Details}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_BODY", Error: err.Error()}
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHENTICATED", Error: domain.ErrUnauthenticated.Error()}
	case errors.As(err, &ferr):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Error: ferr.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Error: domain.ErrForbidden.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Error: domain.ErrNotFound.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Error: domain.ErrDuplicate.Error()}
	case errors.Is(err, domain.ErrIntegrity):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INTEGRITY", Error: domain.ErrIntegrity.Error()}
	default:
		msg := domain.ErrInternal.Error()
		if w.exposeInternal {
			msg = err.Error()
		}
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Error: msg}
	}
}
