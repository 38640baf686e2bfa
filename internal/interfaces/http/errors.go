package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/domain"
)

// respondError traduce errores de dominio a { error, code } con su status.
// Lo que no es de dominio se reporta como 500 UPSTREAM sin detalle interno;
// approve-establishment es la excepción y devuelve el paso que falló.
func respondError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Error: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Error: "invalid credentials"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Error: "not allowed"}
	case errors.Is(err, domain.ErrCredentialNotStaged):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "CREDENTIAL_NOT_FOUND", Error: "registration has no staged credential"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Error: "not found"}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_EXISTS", Error: "email is already registered"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Error: "registration is not in a state that allows this action"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "UPSTREAM", Error: "internal error, please try again"}
	}
}

// ErrorHandler es el fiber.ErrorHandler del servidor: todo error que escape de un handler sale como JSON.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Error: fe.Message})
		}
		log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
		status, body := mapError(err)
		return c.Status(status).JSON(body)
	}
}

// RequestLogger registra una línea por request con método, ruta, status, latencia y request id.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status, _ = mapError(err)
			}
		}

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		rid, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", rid).
			Msg("request")
		return err
	}
}
