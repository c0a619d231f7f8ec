package server

import (
	"fmt"
	"time"

	"carematch-be/internal/bootstrap"
	"carematch-be/internal/config"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/pkg/logger"
	"carematch-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	app    *fiber.App
	cfg    *config.Config
	logger logger.ILogger
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "carematch-be",
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(requestid.New())
	app.Use(accessLog(container.Logger))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
	}))

	app.Use(otelfiber.Middleware())

	// recover sits inside the error handler so panics become 500 envelopes.
	app.Use(serverutils.ErrorHandlerMiddleware())
	app.Use(recover.New())

	registerRoutes(app, container)

	app.Use(func(ctx *fiber.Ctx) error {
		return apperror.NotFound("route not found", ctx.Method()+" "+ctx.Path())
	})

	return &Server{
		app:    app,
		cfg:    cfg,
		logger: container.Logger,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.logger.Info("HTTP", "Server listening", map[string]interface{}{
		"addr": fmt.Sprintf("http://localhost:%s", s.cfg.App.Port),
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown waits for in-flight requests, up to shutdownTimeout.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}

func accessLog(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		details := map[string]interface{}{
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": ctx.GetRespHeader(fiber.HeaderXRequestID),
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", details)
		} else {
			log.Debug("HTTP", "Request served", details)
		}
		return err
	}
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.HealthController.RegisterRoutes(api)
	c.UserController.RegisterRoutes(api)

	c.MatchController.RegisterRoutes(api)
	c.ConversationController.RegisterRoutes(api)
	c.ReviewController.RegisterRoutes(api)
	c.TransactionController.RegisterRoutes(api)
}
