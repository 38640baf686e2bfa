package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/fsic-portal/internal/application/auth"
	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/application/registration"
	"github.com/jhoicas/fsic-portal/internal/application/usecase"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegistrationUC *registration.RegistrationUseCase
	ApprovalUC     *registration.ApprovalUseCase
	AuthUC         *auth.AuthUseCase
	AccountUC      *usecase.AccountUseCase
	DashboardUC    *usecase.DashboardUseCase
	JWTSecret      string
	AllowOrigins   []string
	ResetPerMinute int // 0 = sin límite
	Log            zerolog.Logger
}

// NewApp construye la aplicación Fiber con el stack de middlewares común
// (recover, request id, log de requests, CORS) y registra las rutas.
func NewApp(appName string, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler(deps.Log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(deps.Log))
	app.Use(cors.New(corsConfig(deps.AllowOrigins)))

	Router(app, deps)
	return app
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
		AllowMethods: "GET,POST,OPTIONS",
	}
	if len(origins) > 0 {
		cfg.AllowOrigins = strings.Join(origins, ",")
	}
	return cfg
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	requireAuth := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Funciones que consume el front end
	fn := app.Group("/functions/v1")
	functionsHandler := NewFunctionsHandler(deps.ApprovalUC, deps.AuthUC, deps.Log)
	fn.Post("/approve-establishment", requireAuth, adminOnly, functionsHandler.ApproveEstablishment)
	fn.Post("/request-password-reset", resetLimiter(deps.ResetPerMinute), functionsHandler.RequestPasswordReset)
	fn.Post("/assign-establishment-role", requireAuth, functionsHandler.AssignEstablishmentRole)

	api := app.Group("/api")

	// Registro (público)
	registrationHandler := NewRegistrationHandler(deps.RegistrationUC)
	api.Post("/registrations", registrationHandler.Submit)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/change-password", requireAuth, authHandler.ChangePassword)

	// Administración (Bearer + rol admin)
	admin := api.Group("/admin", requireAuth, adminOnly)
	admin.Get("/registrations", registrationHandler.List)
	admin.Get("/registrations/:id", registrationHandler.GetByID)
	admin.Post("/registrations/:id/reject", registrationHandler.Reject)
	admin.Get("/registrations/:id/pdf", registrationHandler.SummaryPDF)

	accountHandler := NewAccountHandler(deps.AccountUC, deps.DashboardUC)
	admin.Get("/accounts", accountHandler.List)
	admin.Get("/dashboard", accountHandler.Dashboard)

	// Establecimiento: exige haber cambiado la clave temporal
	establishment := api.Group("/establishment",
		requireAuth,
		RequireRole(entity.RoleEstablishment),
		RequirePasswordChanged(deps.AuthUC),
	)
	establishment.Get("/me", accountHandler.Me)
}

// resetLimiter limita request-password-reset por IP; responde 429 con el cuerpo de error común.
func resetLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:  "TOO_MANY_REQUESTS",
				Error: "too many requests, try again later",
			})
		},
	})
}
