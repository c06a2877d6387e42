package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/patmos-mobile/sync-api/internal/application/dto"
	"github.com/patmos-mobile/sync-api/internal/application/users"
)

// UserHandler maneja las peticiones HTTP para los invitados por empresa.
type UserHandler struct {
	uc *users.UseCase
}

// NewUserHandler construye el handler inyectando el caso de uso.
func NewUserHandler(uc *users.UseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Invite godoc
// @Summary      Invitar usuario a una empresa
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la empresa"
// @Param        body  body  dto.InviteUserRequest  true  "Datos del invitado"
// @Success      201   {object}  dto.CompanyUserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/users [post]
func (h *UserHandler) Invite(c *fiber.Ctx) error {
	companyID := c.Params("id")
	var in dto.InviteUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Invite(c.UserContext(), companyID, in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListByCompany godoc
// @Summary      Listar invitados de una empresa
// @Tags         users
// @Produce      json
// @Param        id  path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyUserListResponse
// @Router       /api/companies/{id}/users [get]
func (h *UserHandler) ListByCompany(c *fiber.Ctx) error {
	out, err := h.uc.ListByCompany(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(out)
}

// SetStatus godoc
// @Summary      Activar o desactivar un invitado
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del invitado"
// @Param        body  body  dto.SetUserStatusRequest  true  "Nuevo estado"
// @Success      204
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id}/status [patch]
func (h *UserHandler) SetStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.SetUserStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.SetActive(c.UserContext(), id, in.IsActive); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
