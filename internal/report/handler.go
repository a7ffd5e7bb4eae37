package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"finanzas-backend/internal/auth"
	"finanzas-backend/internal/daterange"
	"finanzas-backend/internal/inventory"
	"finanzas-backend/internal/ledger"
	"finanzas-backend/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func loadFor(c *fiber.Ctx, st store.Store, logger *zap.Logger) (*inventory.Manager, *ledger.Ledger, error) {
	sess, err := auth.SessionFrom(c)
	if err != nil {
		return nil, nil, err
	}
	ctx := c.UserContext()

	inv := inventory.New(st, sess, inventory.WithLogger(logger))
	if err := inv.Load(ctx); err != nil {
		return nil, nil, err
	}
	led := ledger.New(st, sess, ledger.WithLogger(logger))
	if err := led.Load(ctx); err != nil {
		return nil, nil, err
	}
	return inv, led, nil
}

// -------------------------------------------------
// GET /api/reports/summary?from=2024-06-01&to=2024-06-30
// -------------------------------------------------
func SummaryHandler(st store.Store, logger *zap.Logger, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := daterange.Parse(c.Query("from"), c.Query("to"), loc)
		if err != nil {
			return err
		}
		inv, led, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}
		return c.JSON(NewEngine(inv, led).Summary(r))
	}
}

// -------------------------------------------------
// GET /api/reports/export?from=2024-06-01&to=2024-06-30
// -------------------------------------------------
func ExportHandler(st store.Store, logger *zap.Logger, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := daterange.Parse(c.Query("from"), c.Query("to"), loc)
		if err != nil {
			return err
		}
		inv, led, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}

		sold := daterange.Filter(inv.ListSold(), r, inventory.SoldTime)
		movs := daterange.Filter(led.ListMovements(ledger.Chronological), r, ledger.MovementTime)

		var buf bytes.Buffer
		if err := WriteWorkbook(&buf, sold, movs, loc); err != nil {
			logger.Error("workbook export failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "could not build workbook")
		}

		now := time.Now()
		if loc != nil {
			now = now.In(loc)
		}
		name := fmt.Sprintf("finanzas-%s.xlsx", now.Format("20060102"))
		c.Attachment(name)
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(buf.Bytes())
	}
}
