package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"finanzas-backend/internal/apperr"
	"finanzas-backend/internal/models"
)

// GormStore keeps the document tree in relational tables: users, movements
// and products, the latter two keyed by user_id.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateAccount(ctx context.Context, acc models.Account) (string, error) {
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&acc).Error; err != nil {
		return "", apperr.Transport("create account", err)
	}
	return acc.ID, nil
}

func (s *GormStore) FetchAccount(ctx context.Context, uid string) (models.Account, error) {
	var acc models.Account
	err := s.db.WithContext(ctx).First(&acc, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, apperr.NotFound("account %s", uid)
	}
	if err != nil {
		return models.Account{}, apperr.Transport("fetch account", err)
	}
	return acc, nil
}

func (s *GormStore) PatchAccount(ctx context.Context, uid string, patch AccountPatch) error {
	cols := patch.columns()
	if len(cols) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", uid).Updates(cols)
	if res.Error != nil {
		return apperr.Transport("patch account", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("account %s", uid)
	}
	return nil
}

func (s *GormStore) FetchMovements(ctx context.Context, uid string) ([]models.Movement, error) {
	var movs []models.Movement
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", uid).
		Order("id asc").
		Find(&movs).Error; err != nil {
		return nil, apperr.Transport("fetch movements", err)
	}
	return movs, nil
}

func (s *GormStore) AppendMovement(ctx context.Context, uid string, mov models.Movement) (uint, error) {
	mov.ID = 0
	mov.UserID = uid
	if err := s.db.WithContext(ctx).Create(&mov).Error; err != nil {
		return 0, apperr.Transport("append movement", err)
	}
	return mov.ID, nil
}

func (s *GormStore) FetchProducts(ctx context.Context, uid string) ([]models.Product, error) {
	var prods []models.Product
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", uid).
		Order("id asc").
		Find(&prods).Error; err != nil {
		return nil, apperr.Transport("fetch products", err)
	}
	return prods, nil
}

func (s *GormStore) CreateProduct(ctx context.Context, uid string, p models.Product) (uint, error) {
	p.ID = 0
	p.UserID = uid
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return 0, apperr.Transport("create product", err)
	}
	return p.ID, nil
}

func (s *GormStore) PatchProduct(ctx context.Context, uid string, id uint, patch ProductPatch) error {
	cols := patch.columns()
	if len(cols) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND user_id = ?", id, uid).
		Updates(cols)
	if res.Error != nil {
		return apperr.Transport("patch product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product %d", id)
	}
	return nil
}

func (s *GormStore) DeleteProduct(ctx context.Context, uid string, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, uid).
		Delete(&models.Product{})
	if res.Error != nil {
		return apperr.Transport("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product %d", id)
	}
	return nil
}
