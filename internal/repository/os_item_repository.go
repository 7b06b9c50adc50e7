package repository

import (
	"context"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OSItemRepository handles order line items. Items carry no company_id; callers
// load the owning order through a tenant-scoped query first.
type OSItemRepository struct {
	db *gorm.DB
}

func NewOSItemRepository(db *gorm.DB) *OSItemRepository {
	return &OSItemRepository{db: db}
}

func (r *OSItemRepository) Create(ctx context.Context, tx *gorm.DB, item *domain.OSItem) error {
	return conn(ctx, r.db, tx).Create(item).Error
}

func (r *OSItemRepository) CreateBatch(ctx context.Context, tx *gorm.DB, items []domain.OSItem) error {
	if len(items) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Create(&items).Error
}

func (r *OSItemRepository) GetByID(ctx context.Context, tx *gorm.DB, ordemID, itemID uuid.UUID) (*domain.OSItem, error) {
	var item domain.OSItem
	err := conn(ctx, r.db, tx).
		Where("id = ? AND ordem_servico_id = ?", itemID, ordemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *OSItemRepository) Update(ctx context.Context, tx *gorm.DB, item *domain.OSItem) error {
	return conn(ctx, r.db, tx).Save(item).Error
}

func (r *OSItemRepository) Delete(ctx context.Context, tx *gorm.DB, ordemID, itemID uuid.UUID) error {
	result := conn(ctx, r.db, tx).Delete(&domain.OSItem{}, "id = ? AND ordem_servico_id = ?", itemID, ordemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OSItemRepository) ListByOrdem(ctx context.Context, tx *gorm.DB, ordemID uuid.UUID) ([]domain.OSItem, error) {
	var items []domain.OSItem
	err := conn(ctx, r.db, tx).
		Where("ordem_servico_id = ?", ordemID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}
