// Package inventory tracks purchased products through their single
// purchased → sold transition.
package inventory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finanzas-backend/internal/apperr"
	"finanzas-backend/internal/models"
	"finanzas-backend/internal/session"
	"finanzas-backend/internal/store"
)

type NewProduct struct {
	Name        string
	CostPrice   decimal.Decimal
	Description string
	Provider    string
}

type Sale struct {
	SoldPrice     decimal.Decimal
	PaymentMethod string
	BuyerName     string
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func WithLogger(logger *zap.Logger) Option { return func(m *Manager) { m.logger = logger } }

// Manager holds one account's products in insertion order. Not safe for
// concurrent use.
type Manager struct {
	store  store.Store
	sess   session.Handle
	now    func() time.Time
	logger *zap.Logger

	loaded   bool
	products []models.Product
}

func New(st store.Store, sess session.Handle, opts ...Option) *Manager {
	m := &Manager{
		store:  st,
		sess:   sess,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces cached products with the stored ones. Stored products that
// break the sold/sale-field rule are logged but kept, so they stay visible
// and deletable.
func (m *Manager) Load(ctx context.Context) error {
	prods, err := m.store.FetchProducts(ctx, m.sess.UID)
	if err != nil {
		return err
	}
	for _, p := range prods {
		if err := p.CheckLifecycle(); err != nil {
			m.logger.Warn("stored product is inconsistent",
				zap.String("uid", m.sess.UID),
				zap.Uint("product_id", p.ID),
				zap.Error(err))
		}
	}
	m.products = prods
	m.loaded = true
	return nil
}

func (m *Manager) ensureLoaded(ctx context.Context) error {
	if m.loaded {
		return nil
	}
	return m.Load(ctx)
}

func (m *Manager) AddProduct(ctx context.Context, in NewProduct) (models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Product{}, apperr.Validation("product name is required")
	}
	if !in.CostPrice.IsPositive() {
		return models.Product{}, apperr.Validation("cost price must be positive, got %s", in.CostPrice)
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		UserID:      m.sess.UID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CostPrice:   in.CostPrice,
		Provider:    strings.TrimSpace(in.Provider),
		CreatedDate: m.now(),
	}
	id, err := m.store.CreateProduct(ctx, m.sess.UID, p)
	if err != nil {
		return models.Product{}, err
	}
	p.ID = id
	m.products = append(m.products, p)
	return p, nil
}

// MarkSold performs the one-way sale transition. Profit is soldPrice minus
// costPrice and may be negative.
func (m *Manager) MarkSold(ctx context.Context, id uint, sale Sale) (models.Product, error) {
	if err := m.ensureLoaded(ctx); err != nil {
		return models.Product{}, err
	}
	i := m.index(id)
	if i < 0 {
		return models.Product{}, apperr.NotFound("product %d", id)
	}
	if !sale.SoldPrice.IsPositive() {
		return models.Product{}, apperr.Validation("sold price must be positive, got %s", sale.SoldPrice)
	}
	current := m.products[i]
	if current.Sold {
		return models.Product{}, apperr.Conflict("product %d is already sold", id)
	}

	soldAt := m.now()
	sold := current
	sold.Sold = true
	sold.SoldDate = &soldAt
	sold.SoldPrice = decimal.NewNullDecimal(sale.SoldPrice)
	sold.Profit = decimal.NewNullDecimal(sale.SoldPrice.Sub(current.CostPrice))
	sold.PaymentMethod = strings.TrimSpace(sale.PaymentMethod)
	sold.BuyerName = strings.TrimSpace(sale.BuyerName)

	if err := m.store.PatchProduct(ctx, m.sess.UID, id, store.SalePatch(sold)); err != nil {
		return models.Product{}, err
	}
	m.products[i] = sold
	return sold, nil
}

// DeleteProduct removes a product in any state. It cannot be undone.
func (m *Manager) DeleteProduct(ctx context.Context, id uint) error {
	if err := m.ensureLoaded(ctx); err != nil {
		return err
	}
	i := m.index(id)
	if i < 0 {
		return apperr.NotFound("product %d", id)
	}
	if err := m.store.DeleteProduct(ctx, m.sess.UID, id); err != nil {
		return err
	}
	m.products = slices.Delete(m.products, i, i+1)
	return nil
}

func (m *Manager) index(id uint) int {
	return slices.IndexFunc(m.products, func(p models.Product) bool { return p.ID == id })
}

func (m *Manager) Product(id uint) (models.Product, error) {
	i := m.index(id)
	if i < 0 {
		return models.Product{}, apperr.NotFound("product %d", id)
	}
	return m.products[i], nil
}

// Products returns every product in insertion order.
func (m *Manager) Products() []models.Product {
	return slices.Clone(m.products)
}

func (m *Manager) ListAvailable() []models.Product { return Available(m.products) }

func (m *Manager) ListSold() []models.Product { return Sold(m.products) }

// Available keeps unsold products, preserving order.
func Available(prods []models.Product) []models.Product { return partition(prods, false) }

// Sold keeps sold products, preserving order.
func Sold(prods []models.Product) []models.Product { return partition(prods, true) }

func partition(prods []models.Product, sold bool) []models.Product {
	out := make([]models.Product, 0, len(prods))
	for _, p := range prods {
		if p.Sold == sold {
			out = append(out, p)
		}
	}
	return out
}

// Search keeps products whose name contains term, ignoring case. An empty
// term keeps everything.
func Search(prods []models.Product, term string) []models.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(prods)
	}
	out := make([]models.Product, 0, len(prods))
	for _, p := range prods {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

// SoldTime is the timestamp date filters use for products.
func SoldTime(p models.Product) (time.Time, bool) {
	if !p.Sold || p.SoldDate == nil {
		return time.Time{}, false
	}
	return *p.SoldDate, true
}
