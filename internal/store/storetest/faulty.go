// Package storetest provides a Store wrapper that fails chosen calls, for
// exercising partial-failure paths.
package storetest

import (
	"context"
	"errors"

	"finanzas-backend/internal/apperr"
	"finanzas-backend/internal/models"
	"finanzas-backend/internal/store"
)

var ErrInjected = errors.New("injected failure")

// Faulty delegates to Store; a set Fail* flag makes that call return a
// transport error without reaching the wrapped store.
type Faulty struct {
	store.Store

	FailFetchAccount   bool
	FailFetchMovements bool
	FailFetchProducts  bool
	FailAppendMovement bool
	FailPatchAccount   bool
	FailCreateProduct  bool
	FailPatchProduct   bool
	FailDeleteProduct  bool

	// CreateProductsBeforeFailure, when positive, lets that many
	// CreateProduct calls through and fails every later one.
	CreateProductsBeforeFailure int
	createdProducts             int

	Calls []string
}

func Wrap(s store.Store) *Faulty { return &Faulty{Store: s} }

func (f *Faulty) fail(op string, on bool) error {
	f.Calls = append(f.Calls, op)
	if on {
		return apperr.Transport(op, ErrInjected)
	}
	return nil
}

func (f *Faulty) FetchAccount(ctx context.Context, uid string) (models.Account, error) {
	if err := f.fail("FetchAccount", f.FailFetchAccount); err != nil {
		return models.Account{}, err
	}
	return f.Store.FetchAccount(ctx, uid)
}

func (f *Faulty) PatchAccount(ctx context.Context, uid string, patch store.AccountPatch) error {
	if err := f.fail("PatchAccount", f.FailPatchAccount); err != nil {
		return err
	}
	return f.Store.PatchAccount(ctx, uid, patch)
}

func (f *Faulty) FetchMovements(ctx context.Context, uid string) ([]models.Movement, error) {
	if err := f.fail("FetchMovements", f.FailFetchMovements); err != nil {
		return nil, err
	}
	return f.Store.FetchMovements(ctx, uid)
}

func (f *Faulty) AppendMovement(ctx context.Context, uid string, mov models.Movement) (uint, error) {
	if err := f.fail("AppendMovement", f.FailAppendMovement); err != nil {
		return 0, err
	}
	return f.Store.AppendMovement(ctx, uid, mov)
}

func (f *Faulty) FetchProducts(ctx context.Context, uid string) ([]models.Product, error) {
	if err := f.fail("FetchProducts", f.FailFetchProducts); err != nil {
		return nil, err
	}
	return f.Store.FetchProducts(ctx, uid)
}

func (f *Faulty) CreateProduct(ctx context.Context, uid string, p models.Product) (uint, error) {
	exhausted := f.CreateProductsBeforeFailure > 0 && f.createdProducts >= f.CreateProductsBeforeFailure
	if err := f.fail("CreateProduct", f.FailCreateProduct || exhausted); err != nil {
		return 0, err
	}
	f.createdProducts++
	return f.Store.CreateProduct(ctx, uid, p)
}

func (f *Faulty) PatchProduct(ctx context.Context, uid string, id uint, patch store.ProductPatch) error {
	if err := f.fail("PatchProduct", f.FailPatchProduct); err != nil {
		return err
	}
	return f.Store.PatchProduct(ctx, uid, id, patch)
}

func (f *Faulty) DeleteProduct(ctx context.Context, uid string, id uint) error {
	if err := f.fail("DeleteProduct", f.FailDeleteProduct); err != nil {
		return err
	}
	return f.Store.DeleteProduct(ctx, uid, id)
}
