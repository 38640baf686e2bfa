package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/fsic-portal/internal/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", fmt.Errorf("%w: email", domain.ErrInvalidInput), fiber.StatusBadRequest, "VALIDATION"},
		{"conflicto envuelto", fmt.Errorf("aprobación: actualizar estado: %w", domain.ErrConflict), fiber.StatusConflict, "CONFLICT"},
		{"sin credencial", domain.ErrCredentialNotStaged, fiber.StatusNotFound, "CREDENTIAL_NOT_FOUND"},
		{"interno", errors.New("aprobación: asignar rol: conexión rechazada"), fiber.StatusInternalServerError, "UPSTREAM"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}

	// En rutas públicas el detalle interno no sale al cliente.
	_, body := mapError(errors.New("aprobación: asignar rol: conexión rechazada"))
	assert.NotContains(t, body.Error, "asignar rol")
}
