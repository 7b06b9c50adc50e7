package repository

import (
	"context"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoricoStatusRepository is the append-only status ledger. It offers no update or delete.
type HistoricoStatusRepository struct {
	db *gorm.DB
}

func NewHistoricoStatusRepository(db *gorm.DB) *HistoricoStatusRepository {
	return &HistoricoStatusRepository{db: db}
}

// Append inserts one ledger row
func (r *HistoricoStatusRepository) Append(ctx context.Context, tx *gorm.DB, row *domain.HistoricoStatus) error {
	return conn(ctx, r.db, tx).Omit("Status").Create(row).Error
}

// ListByOrdem returns the order's ledger oldest first
func (r *HistoricoStatusRepository) ListByOrdem(ctx context.Context, ordemID uuid.UUID) ([]domain.HistoricoStatus, error) {
	var rows []domain.HistoricoStatus
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(&domain.HistoricoStatus{})).
		Where("ordem_servico_id = ?", ordemID)
	err := query.Preload("Status").Order("data_hora ASC, id ASC").Find(&rows).Error
	return rows, err
}
