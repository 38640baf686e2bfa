package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fsic-portal/internal/application/auth"
	"github.com/jhoicas/fsic-portal/internal/application/registration"
	"github.com/jhoicas/fsic-portal/internal/application/usecase"
	"github.com/jhoicas/fsic-portal/internal/infrastructure/events"
	"github.com/jhoicas/fsic-portal/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/fsic-portal/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/fsic-portal/internal/interfaces/http"
	"github.com/jhoicas/fsic-portal/pkg/config"
	"github.com/jhoicas/fsic-portal/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg.DB, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer st.close()

	mailer := mail.New(cfg.Mail, log.Component("mail"))
	publisher := events.New(cfg.Events, log.Component("events"))
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar publicador de eventos")
		}
	}()

	registrationUC := registration.NewRegistrationUseCase(
		st.tx, st.registrations, st.pendingBusinesses, st.authUsers,
		publisher, infrapdf.NewMarotoPDFGenerator(""), log.Component("registration"),
	)
	approvalUC := registration.NewApprovalUseCase(registration.ApprovalDeps{
		Registrations:      st.registrations,
		Businesses:         st.pendingBusinesses,
		AuthUsers:          st.authUsers,
		Accounts:           st.accounts,
		Roles:              st.roles,
		ApprovedBusinesses: st.approvedBusinesses,
		Mailer:             mailer,
		Events:             publisher,
		LoginURL:           cfg.Portal.LoginURL,
		Log:                log.Component("approval"),
	})
	authUC := auth.NewAuthUseCase(auth.Deps{
		AuthUsers: st.authUsers,
		Accounts:  st.accounts,
		Roles:     st.roles,
		Mailer:    mailer,
		JWT: auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
		LoginURL: cfg.Portal.LoginURL,
		Log:      log.Component("auth"),
	})
	accountUC := usecase.NewAccountUseCase(st.accounts, st.authUsers, st.roles, st.approvedBusinesses)
	dashboardUC := usecase.NewDashboardUseCase(st.registrations, st.accounts)

	deps := httpRouter.RouterDeps{
		RegistrationUC: registrationUC,
		ApprovalUC:     approvalUC,
		AuthUC:         authUC,
		AccountUC:      accountUC,
		DashboardUC:    dashboardUC,
		JWTSecret:      cfg.JWT.Secret,
		AllowOrigins:   cfg.HTTP.Origins(),
		ResetPerMinute: cfg.Reset.MaxPerMinute,
		Log:            log.Component("http"),
	}
	app := httpRouter.NewApp(cfg.App.Name, deps)

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "FSIC Portal API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("sin documentación swagger, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.DB.Driver})
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
	authUC.Wait() // resets con envío pendiente


	log.Info().Msg("aplicación detenida")
}
