package repository

import (
	"context"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusConfigRepository handles the tenant's status flow
type StatusConfigRepository struct {
	db *gorm.DB
}

func NewStatusConfigRepository(db *gorm.DB) *StatusConfigRepository {
	return &StatusConfigRepository{db: db}
}

func (r *StatusConfigRepository) Create(ctx context.Context, tx *gorm.DB, status *domain.StatusConfig) error {
	return conn(ctx, r.db, tx).Create(status).Error
}

func (r *StatusConfigRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.StatusConfig, error) {
	var status domain.StatusConfig
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Where("id = ?", id))
	if err := query.First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// List returns every status of the tenant ordered by ordem, inactive ones included
func (r *StatusConfigRepository) List(ctx context.Context, tx *gorm.DB) ([]domain.StatusConfig, error) {
	var statuses []domain.StatusConfig
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Model(&domain.StatusConfig{}))
	err := query.Order("ordem ASC, created_at ASC").Find(&statuses).Error
	return statuses, err
}

func (r *StatusConfigRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Model(&domain.StatusConfig{})).Count(&count).Error
	return count, err
}

func (r *StatusConfigRepository) Update(ctx context.Context, tx *gorm.DB, status *domain.StatusConfig) error {
	return conn(ctx, r.db, tx).Save(status).Error
}

func (r *StatusConfigRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx))
	return query.Delete(&domain.StatusConfig{}, "id = ?", id).Error
}

// SetOrdem writes one status position
func (r *StatusConfigRepository) SetOrdem(ctx context.Context, tx *gorm.DB, id uuid.UUID, ordem int) error {
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Model(&domain.StatusConfig{}).Where("id = ?", id))
	return query.Update("ordem", ordem).Error
}

// CountActiveCancelamento counts active cancellation statuses other than excludeID
func (r *StatusConfigRepository) CountActiveCancelamento(ctx context.Context, tx *gorm.DB, excludeID uuid.UUID) (int64, error) {
	var count int64
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Model(&domain.StatusConfig{})).
		Where("is_cancelamento = ? AND ativo = ? AND id <> ?", true, true, excludeID)
	err := query.Count(&count).Error
	return count, err
}

// IsReferenced reports whether any order or ledger row points at the status
func (r *StatusConfigRepository) IsReferenced(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	db := conn(ctx, r.db, tx)
	var ordens int64
	if err := ApplyCompanyFilter(ctx, db.Model(&domain.OrdemServico{})).Where("status_id = ?", id).Count(&ordens).Error; err != nil {
		return false, err
	}
	if ordens > 0 {
		return true, nil
	}
	var historico int64
	if err := ApplyCompanyFilter(ctx, db.Model(&domain.HistoricoStatus{})).Where("status_id = ?", id).Count(&historico).Error; err != nil {
		return false, err
	}
	return historico > 0, nil
}
