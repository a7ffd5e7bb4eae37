// Package server assembles the Fiber application: error mapping, middleware
// and the /api routes.
package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"finanzas-backend/internal/account"
	"finanzas-backend/internal/apperr"
	"finanzas-backend/internal/auth"
	"finanzas-backend/internal/config"
	"finanzas-backend/internal/inventory"
	"finanzas-backend/internal/ledger"
	"finanzas-backend/internal/report"
	"finanzas-backend/internal/store"
)

// uploads are xlsx sheets of a few hundred rows at most
const bodyLimit = 8 * 1024 * 1024

func New(cfg *config.Config, st store.Store, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "finanzas-backend",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler(logger),
	})

	app.Use(recover.New())

	origins := strings.Split(cfg.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(origins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public
	api.Post("/accounts", account.RegisterHandler(st, logger, cfg.JWTSecret, cfg.TokenTTL))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/me", account.MeHandler(st, logger))
	protected.Patch("/me", account.UpdateMeHandler(st))

	// Ledger
	protected.Post("/movements", ledger.CreateMovementHandler(st, logger))
	protected.Get("/movements", ledger.ListMovementsHandler(st, logger, cfg.Location))
	protected.Get("/balance", ledger.BalanceHandler(st, logger))
	protected.Post("/balance/reconcile", ledger.ReconcileHandler(st, logger))

	// Inventory
	protected.Post("/products", inventory.CreateProductHandler(st, logger))
	protected.Post("/products/import", inventory.ImportProductsHandler(st, logger))
	protected.Get("/products", inventory.ListProductsHandler(st, logger, cfg.Location))
	protected.Get("/products/:id", inventory.GetProductHandler(st, logger))
	protected.Post("/products/:id/sell", inventory.SellProductHandler(st, logger))
	protected.Delete("/products/:id", inventory.DeleteProductHandler(st, logger))

	// Reports
	protected.Get("/reports/summary", report.SummaryHandler(st, logger, cfg.Location))
	protected.Get("/reports/export", report.ExportHandler(st, logger, cfg.Location))

	return app
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		if apperr.Known(err) {
			status := apperr.HTTPStatus(err)
			if status == fiber.StatusServiceUnavailable {
				logger.Warn("store unavailable",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err))
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}
		logger.Error("unexpected error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "unexpected server error"})
	}
}
