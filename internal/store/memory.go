package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"finanzas-backend/internal/apperr"
	"finanzas-backend/internal/models"
)

// MemoryStore is a process-local Store for development and tests. Ids are
// assigned from a single counter, so insertion order equals id order.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    uint
	accounts  map[string]models.Account
	movements map[string][]models.Movement
	products  map[string][]models.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[string]models.Account),
		movements: make(map[string][]models.Movement),
		products:  make(map[string][]models.Product),
	}
}

func (s *MemoryStore) CreateAccount(ctx context.Context, acc models.Account) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.Transport("create account", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	now := time.Now()
	acc.CreatedAt, acc.UpdatedAt = now, now
	s.accounts[acc.ID] = acc
	return acc.ID, nil
}

func (s *MemoryStore) FetchAccount(ctx context.Context, uid string) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return models.Account{}, apperr.Transport("fetch account", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[uid]
	if !ok {
		return models.Account{}, apperr.NotFound("account %s", uid)
	}
	return acc, nil
}

func (s *MemoryStore) PatchAccount(ctx context.Context, uid string, patch AccountPatch) error {
	if err := ctx.Err(); err != nil {
		return apperr.Transport("patch account", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[uid]
	if !ok {
		return apperr.NotFound("account %s", uid)
	}
	patch.apply(&acc)
	acc.UpdatedAt = time.Now()
	s.accounts[uid] = acc
	return nil
}

func (s *MemoryStore) FetchMovements(ctx context.Context, uid string) ([]models.Movement, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Transport("fetch movements", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.movements[uid]), nil
}

func (s *MemoryStore) AppendMovement(ctx context.Context, uid string, mov models.Movement) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperr.Transport("append movement", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	mov.ID = s.nextID
	mov.UserID = uid
	s.movements[uid] = append(s.movements[uid], mov)
	return mov.ID, nil
}

func (s *MemoryStore) FetchProducts(ctx context.Context, uid string) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Transport("fetch products", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products[uid]), nil
}

func (s *MemoryStore) CreateProduct(ctx context.Context, uid string, p models.Product) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperr.Transport("create product", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	p.UserID = uid
	s.products[uid] = append(s.products[uid], p)
	return p.ID, nil
}

func (s *MemoryStore) PatchProduct(ctx context.Context, uid string, id uint, patch ProductPatch) error {
	if err := ctx.Err(); err != nil {
		return apperr.Transport("patch product", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prods := s.products[uid]
	i := slices.IndexFunc(prods, func(p models.Product) bool { return p.ID == id })
	if i < 0 {
		return apperr.NotFound("product %d", id)
	}
	patch.apply(&prods[i])
	return nil
}

func (s *MemoryStore) DeleteProduct(ctx context.Context, uid string, id uint) error {
	if err := ctx.Err(); err != nil {
		return apperr.Transport("delete product", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prods := s.products[uid]
	i := slices.IndexFunc(prods, func(p models.Product) bool { return p.ID == id })
	if i < 0 {
		return apperr.NotFound("product %d", id)
	}
	s.products[uid] = slices.Delete(prods, i, i+1)
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
