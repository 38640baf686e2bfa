package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/fsic-portal/internal/application/auth"
	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/application/registration"
	"github.com/jhoicas/fsic-portal/internal/domain"
)

// FunctionsHandler expone los tres endpoints que consume el front end bajo /functions/v1.
type FunctionsHandler struct {
	approval *registration.ApprovalUseCase
	auth     *auth.AuthUseCase
	log      zerolog.Logger
}

// NewFunctionsHandler construye el handler.
func NewFunctionsHandler(approval *registration.ApprovalUseCase, authUC *auth.AuthUseCase, log zerolog.Logger) *FunctionsHandler {
	return &FunctionsHandler{approval: approval, auth: authUC, log: log}
}

// ApproveEstablishment godoc
// @Summary      Aprobar solicitud de establecimiento
// @Tags         functions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ApproveRequest  true  "userId = ID de la solicitud pendiente"
// @Success      200   {object}  dto.ApproveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /functions/v1/approve-establishment [post]
func (h *FunctionsHandler) ApproveEstablishment(c *fiber.Ctx) error {
	var in dto.ApproveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Error: "invalid request body"})
	}
	if in.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Error: "userId is required"})
	}
	res, err := h.approval.Approve(c.UserContext(), in.UserID)
	if err != nil {
		if !isDomainError(err) {
			h.log.Error().Err(err).Str("registration_id", in.UserID).Msg("aprobación fallida")
			// Ruta solo para admin: el paso que falló ayuda a reintentar.
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "UPSTREAM", Error: err.Error()})
		}
		return respondError(c, err)
	}
	return c.JSON(dto.ApproveResponse{
		Success: true,
		Message: "Establishment approved successfully",
		User:    dto.ApprovedUser{ID: res.UserID, Email: res.Email},
	})
}

// RequestPasswordReset godoc
// @Summary      Solicitar clave temporal
// @Description  Responde siempre el mismo mensaje, exista o no la cuenta.
// @Tags         functions
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PasswordResetRequest  true  "email"
// @Success      200   {object}  dto.SuccessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /functions/v1/request-password-reset [post]
func (h *FunctionsHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Error: "invalid request body"})
	}
	msg, err := h.auth.RequestPasswordReset(c.UserContext(), in.Email)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Error: "email is required"})
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: msg})
}

// AssignEstablishmentRole godoc
// @Summary      Asignar rol establishment al propio usuario
// @Tags         functions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AssignRoleRequest  true  "userId = ID del usuario autenticado"
// @Success      200   {object}  dto.SuccessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /functions/v1/assign-establishment-role [post]
func (h *FunctionsHandler) AssignEstablishmentRole(c *fiber.Ctx) error {
	var in dto.AssignRoleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Error: "invalid request body"})
	}
	err := h.auth.AssignEstablishmentRole(c.UserContext(), GetUserID(c), in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Error: "userId does not match the authenticated user"})
		}
		if !isDomainError(err) {
			h.log.Error().Err(err).Msg("asignación de rol fallida")
		}
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Establishment role assigned"})
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrCredentialNotStaged, domain.ErrEmailAlreadyExists,
		domain.ErrInvalidInput, domain.ErrUnauthorized, domain.ErrForbidden, domain.ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
