package inventory

import (
	"context"
	"errors"
	"strings"
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

type CreateProductRequest struct {
	Name        string          `json:"name"`
	CostPrice   decimal.Decimal `json:"costPrice"`
	Description string          `json:"description"`
	Provider    string          `json:"provider"`
}

type SellProductRequest struct {
	SoldPrice     decimal.Decimal `json:"soldPrice"`
	PaymentMethod string          `json:"paymentMethod"`
	BuyerName     string          `json:"buyerName"`
}

type ProductResponse struct {
	ID                uint             `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	CostPrice         decimal.Decimal  `json:"costPrice"`
	Provider          string           `json:"provider,omitempty"`
	CreatedDate       time.Time        `json:"createdDate"`
	Sold              bool             `json:"sold"`
	SoldDate          *time.Time       `json:"soldDate,omitempty"`
	SoldPrice         *decimal.Decimal `json:"soldPrice,omitempty"`
	Profit            *decimal.Decimal `json:"profit,omitempty"`
	PaymentMethod     string           `json:"paymentMethod,omitempty"`
	BuyerName         string           `json:"buyerName,omitempty"`
	WarrantyRemaining *int             `json:"warrantyRemaining,omitempty"`
}

func ToProductResponse(p models.Product) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		CostPrice:     p.CostPrice,
		Provider:      p.Provider,
		CreatedDate:   p.CreatedDate,
		Sold:          p.Sold,
		SoldDate:      p.SoldDate,
		PaymentMethod: p.PaymentMethod,
		BuyerName:     p.BuyerName,
	}
	if p.SoldPrice.Valid {
		v := p.SoldPrice.Decimal
		resp.SoldPrice = &v
	}
	if p.Profit.Valid {
		v := p.Profit.Decimal
		resp.Profit = &v
	}
	return resp
}

func toResponses(prods []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(prods))
	for _, p := range prods {
		out = append(out, ToProductResponse(p))
	}
	return out
}

func loadFor(c *fiber.Ctx, st store.Store, logger *zap.Logger) (*Manager, error) {
	sess, err := auth.SessionFrom(c)
	if err != nil {
		return nil, err
	}
	m := New(st, sess, WithLogger(logger))
	if err := m.Load(c.UserContext()); err != nil {
		return nil, err
	}
	return m, nil
}

func productID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid product id %q", c.Params("id"))
	}
	return uint(id), nil
}

// -------------------------------------------------
// POST /api/products
// -------------------------------------------------
func CreateProductHandler(st store.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body: %v", err)
		}

		m, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}
		p, err := m.AddProduct(context.WithoutCancel(c.UserContext()), NewProduct{
			Name:        body.Name,
			CostPrice:   body.CostPrice,
			Description: body.Description,
			Provider:    body.Provider,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToProductResponse(p))
	}
}

// -------------------------------------------------
// POST /api/products/import   (multipart, field "file", .xlsx)
// -------------------------------------------------
func ImportProductsHandler(st store.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return apperr.Validation("file upload failed: %v", err)
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return apperr.Validation("only .xlsx files can be imported")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not open upload: "+err.Error())
		}
		defer file.Close()

		m, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}
		res, err := m.ImportProducts(context.WithoutCancel(c.UserContext()), file)
		if errors.Is(err, apperr.ErrTransport) && len(res.Rows) > 0 {
			// rows before the failure are stored; report them so a retry
			// can skip them
			logger.Warn("product import interrupted",
				zap.String("uid", m.sess.UID),
				zap.Int("imported", res.Imported),
				zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   err.Error(),
				"partial": true,
				"result":  res,
			})
		}
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// -------------------------------------------------
// GET /api/products?status=available|sold|all&q=phone&from=2024-06-01&to=2024-06-30
// -------------------------------------------------
// from/to filter by sale date, so a bounded range only returns sold products.
func ListProductsHandler(st store.Store, logger *zap.Logger, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := daterange.Parse(c.Query("from"), c.Query("to"), loc)
		if err != nil {
			return err
		}

		m, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}

		var prods []models.Product
		switch c.Query("status", "all") {
		case "all":
			prods = m.Products()
		case "available":
			prods = m.ListAvailable()
		case "sold":
			prods = m.ListSold()
		default:
			return apperr.Validation("status must be available, sold or all")
		}

		prods = Search(prods, c.Query("q"))
		prods = daterange.Filter(prods, r, SoldTime)
		return c.JSON(toResponses(prods))
	}
}

// -------------------------------------------------
// GET /api/products/:id
// -------------------------------------------------
func GetProductHandler(st store.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := productID(c)
		if err != nil {
			return err
		}
		m, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}
		p, err := m.Product(id)
		if err != nil {
			return err
		}

		resp := ToProductResponse(p)
		if p.Sold {
			days := m.WarrantyRemaining(p)
			resp.WarrantyRemaining = &days
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/products/:id/sell
// -------------------------------------------------
func SellProductHandler(st store.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := productID(c)
		if err != nil {
			return err
		}
		var body SellProductRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body: %v", err)
		}

		m, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}
		p, err := m.MarkSold(context.WithoutCancel(c.UserContext()), id, Sale{
			SoldPrice:     body.SoldPrice,
			PaymentMethod: body.PaymentMethod,
			BuyerName:     body.BuyerName,
		})
		if err != nil {
			return err
		}
		return c.JSON(ToProductResponse(p))
	}
}

// -------------------------------------------------
// DELETE /api/products/:id
// -------------------------------------------------
func DeleteProductHandler(st store.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := productID(c)
		if err != nil {
			return err
		}
		m, err := loadFor(c, st, logger)
		if err != nil {
			return err
		}
		if err := m.DeleteProduct(context.WithoutCancel(c.UserContext()), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
