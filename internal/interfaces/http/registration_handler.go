package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/application/registration"
)

// RegistrationHandler maneja el formulario público y la revisión de solicitudes.
type RegistrationHandler struct {
	uc *registration.RegistrationUseCase
}

// NewRegistrationHandler construye el handler inyectando el caso de uso.
func NewRegistrationHandler(uc *registration.RegistrationUseCase) *RegistrationHandler {
	return &RegistrationHandler{uc: uc}
}

// Submit godoc
// @Summary      Enviar solicitud de registro
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitRegistrationRequest  true  "Datos del solicitante y sus negocios"
// @Success      201   {object}  dto.RegistrationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/registrations [post]
func (h *RegistrationHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitRegistrationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Error: "invalid request body"})
	}
	out, err := h.uc.Submit(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "pending | approved | rejected"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200     {object}  dto.RegistrationListResponse
// @Router       /api/admin/registrations [get]
func (h *RegistrationHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), c.Query("status"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener solicitud por ID
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RegistrationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/registrations/{id} [get]
func (h *RegistrationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string             true   "ID de la solicitud"
// @Param        body  body  dto.RejectRequest  false  "Motivo"
// @Success      200   {object}  dto.SuccessResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/registrations/{id}/reject [post]
func (h *RegistrationHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Error: "invalid request body"})
		}
	}
	if err := h.uc.Reject(c.UserContext(), c.Params("id"), in.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Registration rejected"})
}

// SummaryPDF godoc
// @Summary      Resumen PDF de la solicitud
// @Tags         registrations
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/registrations/{id}/pdf [get]
func (h *RegistrationHandler) SummaryPDF(c *fiber.Ctx) error {
	doc, filename, err := h.uc.SummaryPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(doc)
}
