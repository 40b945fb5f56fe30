package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
)

// writeError traduce errores de dominio a dto.ErrorResponse. Los rechazos conservan su código estable.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	var rej *domain.RejectionError
	if errors.As(err, &rej) {
		return c.Status(status).JSON(dto.ErrorResponse{Code: rej.Code, Message: rej.Message})
	}
	switch status {
	case fiber.StatusBadRequest:
		return c.Status(status).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case fiber.StatusUnauthorized:
		return c.Status(status).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case fiber.StatusForbidden:
		return c.Status(status).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case fiber.StatusNotFound:
		return c.Status(status).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case fiber.StatusConflict:
		return c.Status(status).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	}
	// El detalle (SQL, driver) queda en el log, no en la respuesta al PDV.
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno, intente nuevamente"})
}

// statusFor rechazos de validación de negocio → 422; entrada mal formada sin código → 400.
func statusFor(err error) int {
	isRejection := domain.RejectionCode(err) != ""
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		if isRejection {
			return fiber.StatusUnprocessableEntity
		}
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
