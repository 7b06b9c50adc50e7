package repository

import (
	"context"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PagamentoRepository handles payments. Like items, payments are scoped through their order.
type PagamentoRepository struct {
	db *gorm.DB
}

func NewPagamentoRepository(db *gorm.DB) *PagamentoRepository {
	return &PagamentoRepository{db: db}
}

// Create inserts payments in place so callers see the generated ids
func (r *PagamentoRepository) Create(ctx context.Context, tx *gorm.DB, pagamentos []domain.Pagamento) error {
	if len(pagamentos) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Create(&pagamentos).Error
}

func (r *PagamentoRepository) Delete(ctx context.Context, tx *gorm.DB, ordemID, id uuid.UUID) error {
	result := conn(ctx, r.db, tx).Delete(&domain.Pagamento{}, "id = ? AND ordem_servico_id = ?", id, ordemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PagamentoRepository) ListByOrdem(ctx context.Context, tx *gorm.DB, ordemID uuid.UUID) ([]domain.Pagamento, error) {
	var pagamentos []domain.Pagamento
	err := conn(ctx, r.db, tx).
		Where("ordem_servico_id = ?", ordemID).
		Order("data ASC").
		Find(&pagamentos).Error
	return pagamentos, err
}
