package api

import (
	"errors"
	"io/fs"
	"net/http"

	"matchin/docs"
	"matchin/internal/api/handlers"
	"matchin/internal/dto"
	"matchin/pkg/config"
	"matchin/pkg/middleware"
	"matchin/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	cfg *config.ServerConfig,
	uploadHandler *handlers.UploadHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "matchin",
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			msg := err.Error()
			if code >= fiber.StatusInternalServerError {
				middleware.Logger(c, appLogger).Error("Unhandled error",
					zap.String("path", c.Path()),
					zap.Error(err),
				)
				msg = "internal server error"
			}
			return c.Status(code).JSON(dto.ErrorResponse{Error: msg})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept," + middleware.RequestIDHeader,
		ExposeHeaders: middleware.RequestIDHeader,
	}))
	app.Use(middleware.RequestID(appLogger))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} - ${latency} ${method} ${path} ${respHeader:" + middleware.RequestIDHeader + "}\n",
	}))

	_ = docs.SwaggerInfo // registers the OpenAPI document with swag
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/upload", uploadHandler.Probe)
	app.Post("/upload", uploadHandler.Relay)

	// Upload widget page
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		appLogger.Warn("Embedded web interface missing, page will not be served", zap.Error(err))
		return app
	}
	app.Use("/", filesystem.New(filesystem.Config{
		Root:  http.FS(static),
		Index: "index.html",
	}))

	return app
}
