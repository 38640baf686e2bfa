package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/application/usecase"
)

// AccountHandler maneja cuentas aprobadas y el panel de administración.
type AccountHandler struct {
	accounts  *usecase.AccountUseCase
	dashboard *usecase.DashboardUseCase
}

// NewAccountHandler construye el handler.
func NewAccountHandler(accounts *usecase.AccountUseCase, dashboard *usecase.DashboardUseCase) *AccountHandler {
	return &AccountHandler{accounts: accounts, dashboard: dashboard}
}

// List godoc
// @Summary      Listar cuentas aprobadas
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Límite (default 20)"
// @Param        offset  query  int  false  "Offset"
// @Success      200     {object}  dto.AccountListResponse
// @Router       /api/admin/accounts [get]
func (h *AccountHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.accounts.List(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Dashboard devuelve los contadores del panel.
// GET /api/admin/dashboard
func (h *AccountHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.dashboard.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Me devuelve el perfil del establecimiento autenticado.
// GET /api/establishment/me
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	out, err := h.accounts.Me(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
