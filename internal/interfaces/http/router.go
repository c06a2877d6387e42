package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/patmos-mobile/sync-api/internal/application/auth"
	"github.com/patmos-mobile/sync-api/internal/application/registry"
	"github.com/patmos-mobile/sync-api/internal/application/users"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.UseCase
	CompanyUC *registry.UseCase
	UsersUC   *users.UseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	// El magic link del correo llega por GET; clientes de API pueden usar POST.
	authGroup.Get("/challenge/redeem", authHandler.RedeemChallenge)
	authGroup.Post("/challenge/redeem", authHandler.RedeemChallenge)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Companies (protegido)
	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Post("/test-connection", companyHandler.TestConnection)
	companies.Put("/:id", companyHandler.Update)
	companies.Delete("/:id", companyHandler.Delete)
	companies.Patch("/:id/activate", companyHandler.Activate)

	// Usuarios invitados por empresa (protegido)
	userHandler := NewUserHandler(deps.UsersUC)
	companies.Get("/:id/users", userHandler.ListByCompany)
	companies.Post("/:id/users", userHandler.Invite)
	protected.Patch("/users/:id/status", userHandler.SetStatus)
}
