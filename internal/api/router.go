package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/presenca/internal/database"
	"github.com/saturnino-fabrica-de-software/presenca/internal/storage"
)

type Dependencies struct {
	Registration handler.RegistrationService
	Attendance   handler.AttendanceService
	// DB backs /ready; nil skips the ping
	DB database.Pinger

	APIKeys         []string
	RateLimitMax    int
	RateLimitWindow time.Duration
	RequestTimeout  time.Duration
	MaxImageSize    int64

	// UploadsDir is served under /uploads when photos are kept on local disk
	UploadsDir string
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	maxImage := int64(handler.DefaultMaxImageSize)
	if deps != nil && deps.MaxImageSize > 0 {
		maxImage = deps.MaxImageSize
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Presenca API",
		BodyLimit:    int(maxImage)*filesPerRequest + 1024*1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

// room for the three registration photos plus one spare part
const filesPerRequest = 4

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var db database.Pinger
	if r.deps != nil {
		db = r.deps.DB
	}

	// Health check endpoints (no auth required)
	healthHandler := handler.NewHealthHandler(db)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	if r.deps.UploadsDir != "" {
		r.app.Static(storage.LocalURLPrefix, r.deps.UploadsDir)
	}

	r.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Max:    r.deps.RateLimitMax,
		Window: r.deps.RateLimitWindow,
	})

	// auth before the limiter so clients are counted by key
	protected := r.app.Group("",
		middleware.APIKeyAuth(r.deps.APIKeys),
		r.rateLimiter.Handler(),
		middleware.RequestTimeout(r.deps.RequestTimeout),
	)

	if r.deps.Registration != nil {
		registration := handler.NewRegistrationHandler(r.deps.Registration, r.deps.MaxImageSize, r.logger)
		protected.Post("/register-face", registration.Register)
		protected.Get("/register-face/:user_id", registration.Status)
	}

	if r.deps.Attendance != nil {
		attendance := handler.NewAttendanceHandler(r.deps.Attendance, r.deps.MaxImageSize, r.logger)
		protected.Post("/absen", attendance.Submit)
		protected.Get("/absen/:user_id", attendance.History)
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
