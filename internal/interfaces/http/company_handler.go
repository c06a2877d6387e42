package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/patmos-mobile/sync-api/internal/application/dto"
	"github.com/patmos-mobile/sync-api/internal/application/registry"
	"github.com/patmos-mobile/sync-api/internal/domain"
)

// CompanyHandler maneja las peticiones HTTP para los perfiles de conexión.
type CompanyHandler struct {
	uc *registry.UseCase
}

// NewCompanyHandler construye el handler inyectando el sincronizador.
func NewCompanyHandler(uc *registry.UseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// List godoc
// @Summary      Listar perfiles de conexión
// @Tags         companies
// @Produce      json
// @Success      200  {object}  dto.CompanyListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar perfil de conexión
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCompanyRequest  true  "Datos del perfil"
// @Success      201   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/companies [post]
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar perfil de conexión
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del perfil"
// @Param        body  body  dto.UpdateCompanyRequest  true  "Datos del perfil; password vacío conserva credenciales"
// @Success      200   {object}  dto.CompanyResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/companies/{id} [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Desactivar perfil (soft-delete)
// @Tags         companies
// @Produce      json
// @Param        id  path  string  true  "ID del perfil"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/companies/{id} [delete]
func (h *CompanyHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.SoftDelete(c.UserContext(), id); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Activate godoc
// @Summary      Reactivar perfil desactivado
// @Tags         companies
// @Produce      json
// @Param        id  path  string  true  "ID del perfil"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/activate [patch]
func (h *CompanyHandler) Activate(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.Reactivate(c.UserContext(), id); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TestConnection godoc
// @Summary      Probar conexión con Service Layer
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TestConnectionRequest  true  "Datos de conexión"
// @Success      200   {object}  dto.TestConnectionResponse
// @Router       /api/companies/test-connection [post]
func (h *CompanyHandler) TestConnection(c *fiber.Ctx) error {
	var in dto.TestConnectionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return c.JSON(dto.TestConnectionResponse{Connected: h.uc.TestConnection(c.UserContext(), in)})
}

// mapError traduce errores de dominio a respuestas HTTP con un único mensaje
// resumido; el detalle queda en los logs del caso de uso.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "no hay sesión activa"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "faltan campos requeridos"})
	case errors.Is(err, domain.ErrConnectionRejected):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "CONNECTION_REJECTED", Message: "no se pudo conectar con SAP Business One"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "perfil no encontrado"})
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "REMOTE_UNAVAILABLE", Message: "el almacén remoto no está disponible"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo completar la operación"})
	}
}
