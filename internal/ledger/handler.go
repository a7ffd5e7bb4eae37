package ledger

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finanzas-backend/internal/apperr"
	"finanzas-backend/internal/auth"
	"finanzas-backend/internal/daterange"
	"finanzas-backend/internal/models"
	"finanzas-backend/internal/store"
)

type CreateMovementRequest struct {
	Type        models.MovementKind `json:"type"` // "ingreso" | "egreso"
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
	Location    *models.Location    `json:"location"` // optional
}

type MovementResponse struct {
	ID          uint                `json:"id"`
	Type        models.MovementKind `json:"type"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
	Timestamp   time.Time           `json:"timestamp"`
	Location    *models.Location    `json:"location,omitempty"`
}

type BalanceResponse struct {
	Balance        decimal.Decimal `json:"balance"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	MovementCount  int             `json:"movementCount"`
}

type ReconcileResponse struct {
	Stored        decimal.Decimal `json:"stored"`
	Computed      decimal.Decimal `json:"computed"`
	Drift         decimal.Decimal `json:"drift"`
	Consistent    bool            `json:"consistent"`
	Repaired      bool            `json:"repaired"`
	MovementCount int             `json:"movementCount"`
}

func ToMovementResponse(m models.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		Type:        m.Kind,
		Amount:      m.Amount,
		Description: m.Description,
		Timestamp:   m.Timestamp,
		Location:    m.Location(),
	}
}

// loadFor builds a ledger for the request's session and loads it.
func loadFor(c *fiber.Ctx, st store.Store, logger *zap.Logger) (*Ledger, error) {
	sess, err := auth.SessionFrom(c)
	if err != nil {
		return nil, err
	}
	l := New(st, sess, WithLogger(logger))
	if err := l.Load(c.UserContext()); err != nil {
		return nil, err
	}
	return l, nil
}

// -------------------------------------------------
// POST /api/movements
// -------------------------------------------------
func CreateMovementHandler(st store.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMovementRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body: %v", err)
		}

		l, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}

		// A client that goes away must not abort the two writes.
		ctx := context.WithoutCancel(c.UserContext())
		mov, err := l.ApplyMovement(ctx, MovementInput{
			Kind:        body.Type,
			Amount:      body.Amount,
			Description: body.Description,
			Location:    body.Location,
		})
		if l.IsPartial(err) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":    err.Error(),
				"pending":  true,
				"movement": ToMovementResponse(mov),
				"balance":  l.CurrentBalance(),
			})
		}
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"movement": ToMovementResponse(mov),
			"balance":  l.CurrentBalance(),
		})
	}
}

// -------------------------------------------------
// GET /api/movements?order=newest&from=2024-06-01&to=2024-06-30
// -------------------------------------------------
func ListMovementsHandler(st store.Store, logger *zap.Logger, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order := NewestFirst
		switch c.Query("order", "newest") {
		case "newest":
		case "oldest":
			order = Chronological
		default:
			return apperr.Validation("order must be newest or oldest")
		}

		r, err := daterange.Parse(c.Query("from"), c.Query("to"), loc)
		if err != nil {
			return err
		}

		l, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}

		movs := daterange.Filter(l.ListMovements(order), r, MovementTime)
		resp := make([]MovementResponse, 0, len(movs))
		for _, m := range movs {
			resp = append(resp, ToMovementResponse(m))
		}
		return c.JSON(resp)
	}
}

// MovementTime is the timestamp date filters use for movements.
func MovementTime(m models.Movement) (time.Time, bool) { return m.Timestamp, true }

// -------------------------------------------------
// GET /api/balance
// -------------------------------------------------
func BalanceHandler(st store.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}
		return c.JSON(BalanceResponse{
			Balance:        l.CurrentBalance(),
			InitialBalance: l.InitialBalance(),
			MovementCount:  len(l.movements),
		})
	}
}

// -------------------------------------------------
// POST /api/balance/reconcile?repair=true
// -------------------------------------------------
func ReconcileHandler(st store.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		l := New(st, sess, WithLogger(logger))

		ctx := context.WithoutCancel(c.UserContext())
		var rec Reconciliation
		if c.QueryBool("repair", false) {
			rec, err = l.Repair(ctx)
		} else {
			rec, err = l.Reconcile(ctx)
		}
		if err != nil {
			return err
		}

		return c.JSON(ReconcileResponse{
			Stored:        rec.Stored,
			Computed:      rec.Computed,
			Drift:         rec.Drift,
			Consistent:    rec.Consistent(),
			Repaired:      rec.Repaired,
			MovementCount: rec.MovementCount,
		})
	}
}
