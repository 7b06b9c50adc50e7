package repository

import (
	"context"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampoOSRepository handles tenant-defined custom fields and their per-order values
type CampoOSRepository struct {
	db *gorm.DB
}

func NewCampoOSRepository(db *gorm.DB) *CampoOSRepository {
	return &CampoOSRepository{db: db}
}

func (r *CampoOSRepository) Create(ctx context.Context, campo *domain.CampoOS) error {
	return r.db.WithContext(ctx).Create(campo).Error
}

func (r *CampoOSRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CampoOS, error) {
	var campo domain.CampoOS
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Where("id = ?", id))
	if err := query.First(&campo).Error; err != nil {
		return nil, err
	}
	return &campo, nil
}

// List returns the tenant's fields in display order
func (r *CampoOSRepository) List(ctx context.Context, tx *gorm.DB, onlyActive bool) ([]domain.CampoOS, error) {
	var campos []domain.CampoOS
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Model(&domain.CampoOS{}))
	if onlyActive {
		query = query.Where("ativo = ?", true)
	}
	err := query.Order("ordem ASC, nome ASC").Find(&campos).Error
	return campos, err
}

func (r *CampoOSRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(&domain.CampoOS{})).Count(&count).Error
	return count, err
}

func (r *CampoOSRepository) Update(ctx context.Context, campo *domain.CampoOS) error {
	return r.db.WithContext(ctx).Save(campo).Error
}

// Delete removes the field and every stored value of it
func (r *CampoOSRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := ApplyCompanyFilter(ctx, tx).Delete(&domain.CampoOS{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(&domain.ValorCampoOS{}, "campo_id = ?", id).Error
	})
}

// SaveValores upserts values keyed by (order, field)
func (r *CampoOSRepository) SaveValores(ctx context.Context, tx *gorm.DB, valores []domain.ValorCampoOS) error {
	if len(valores) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Omit("Campo").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ordem_servico_id"}, {Name: "campo_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor", "updated_at"}),
	}).Create(&valores).Error
}

func (r *CampoOSRepository) ListValores(ctx context.Context, tx *gorm.DB, ordemID uuid.UUID) ([]domain.ValorCampoOS, error) {
	var valores []domain.ValorCampoOS
	err := conn(ctx, r.db, tx).
		Preload("Campo").
		Where("ordem_servico_id = ?", ordemID).
		Find(&valores).Error
	return valores, err
}
