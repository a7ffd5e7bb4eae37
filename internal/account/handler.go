package account

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finanzas-backend/internal/apperr"
	"finanzas-backend/internal/auth"
	"finanzas-backend/internal/ledger"
	"finanzas-backend/internal/models"
	"finanzas-backend/internal/store"
)

type RegisterRequest struct {
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type AccountResponse struct {
	UID            string          `json:"uid"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type RegisterResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// MeResponse reports the stored balance next to the one replayed from the
// movement log; Pending means they disagree and a repair is due.
type MeResponse struct {
	AccountResponse
	ComputedBalance decimal.Decimal `json:"computedBalance"`
	Pending         bool            `json:"pending"`
}

func toResponse(acc models.Account) AccountResponse {
	return AccountResponse{
		UID:            acc.ID,
		FirstName:      acc.FirstName,
		LastName:       acc.LastName,
		InitialBalance: acc.InitialBalance,
		Balance:        acc.Balance,
		CreatedAt:      acc.CreatedAt,
	}
}

// -------------------------------------------------
// POST /api/accounts   (public)
// -------------------------------------------------
func RegisterHandler(st store.Store, logger *zap.Logger, secret string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body: %v", err)
		}

		acc, err := Register(context.WithoutCancel(c.UserContext()), st, Registration{
			FirstName:      body.FirstName,
			LastName:       body.LastName,
			InitialBalance: body.InitialBalance,
		})
		if err != nil {
			return err
		}

		token, err := auth.GenerateToken(secret, acc.ID, ttl)
		if err != nil {
			logger.Error("token signing failed", zap.String("uid", acc.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
		}

		logger.Info("account registered", zap.String("uid", acc.ID))
		return c.Status(fiber.StatusCreated).JSON(RegisterResponse{
			Token:   token,
			Account: toResponse(acc),
		})
	}
}

// -------------------------------------------------
// GET /api/me
// -------------------------------------------------
func MeHandler(st store.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		l := ledger.New(st, sess, ledger.WithLogger(logger))
		rec, err := l.Reconcile(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(MeResponse{
			AccountResponse: toResponse(l.Account()),
			ComputedBalance: rec.Computed,
			Pending:         !rec.Consistent(),
		})
	}
}

// -------------------------------------------------
// PATCH /api/me
// -------------------------------------------------
func UpdateMeHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		var body UpdateProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body: %v", err)
		}
		acc, err := UpdateProfile(context.WithoutCancel(c.UserContext()), st, sess.UID, body.FirstName, body.LastName)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(acc))
	}
}
