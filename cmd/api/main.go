package main

import (
	"context"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/patmos-mobile/sync-api/internal/application/auth"
	"github.com/patmos-mobile/sync-api/internal/application/registry"
	"github.com/patmos-mobile/sync-api/internal/application/session"
	"github.com/patmos-mobile/sync-api/internal/application/users"
	"github.com/patmos-mobile/sync-api/internal/infrastructure/postgres"
	"github.com/patmos-mobile/sync-api/internal/infrastructure/securestore"
	"github.com/patmos-mobile/sync-api/internal/infrastructure/servicelayer"
	infrasmtp "github.com/patmos-mobile/sync-api/internal/infrastructure/smtp"
	httpRouter "github.com/patmos-mobile/sync-api/internal/interfaces/http"
	"github.com/patmos-mobile/sync-api/pkg/config"
	"github.com/patmos-mobile/sync-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	cacheKey, err := hex.DecodeString(cfg.Cache.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("CACHE_KEY no es hex válido")
	}
	store, err := securestore.New(cfg.Cache.Path, cacheKey)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén local cifrado")
	}
	log.Info().Str("device_id", securestore.DeviceID(store, log)).Msg("identidad del dispositivo")

	companyStore := postgres.NewCompanyStore(pool)
	companyCache := securestore.NewCompanyCache(store, log)
	companyUserRepo := postgres.NewCompanyUserRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	challengeRepo := postgres.NewChallengeRepository(pool)

	verifier := servicelayer.NewVerifier(time.Duration(cfg.SL.TimeoutSeconds)*time.Second, log)
	mailer := infrasmtp.NewMailer(cfg.SMTP, log)
	sessions := session.ContextAccessor{}

	authUC := auth.NewUseCase(userRepo, challengeRepo, mailer, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	companyUC := registry.NewUseCase(companyStore, companyCache, sessions, verifier, log)
	usersUC := users.NewUseCase(companyUserRepo, authUC, sessions, log)

	// Un inicio de sesión activa la membresía pendiente del invitado.
	authUC.OnSignIn(usersUC.ActivateOnSignIn)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Patmos Sync API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		CompanyUC: companyUC,
		UsersUC:   usersUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
