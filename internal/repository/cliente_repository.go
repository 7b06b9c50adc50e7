package repository

import (
	"context"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository struct {
	db *gorm.DB
}

func NewClienteRepository(db *gorm.DB) *ClienteRepository {
	return &ClienteRepository{db: db}
}

func (r *ClienteRepository) Create(ctx context.Context, cliente *domain.Cliente) error {
	return r.db.WithContext(ctx).Create(cliente).Error
}

func (r *ClienteRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Cliente, error) {
	var cliente domain.Cliente
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Where("id = ?", id))
	if err := query.First(&cliente).Error; err != nil {
		return nil, err
	}
	return &cliente, nil
}

// Update saves a cliente previously loaded through GetByID
func (r *ClienteRepository) Update(ctx context.Context, cliente *domain.Cliente) error {
	return r.db.WithContext(ctx).Save(cliente).Error
}

func (r *ClienteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx))
	return query.Delete(&domain.Cliente{}, "id = ?", id).Error
}

// List returns clientes ordered by nome, matching search against nome, documento and telefone
func (r *ClienteRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.Cliente, int64, error) {
	var clientes []domain.Cliente
	var total int64

	page, pageSize = NormalizePage(page, pageSize)
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(&domain.Cliente{}))

	if search != "" {
		pattern := likePattern(search)
		digits := domain.OnlyDigits(search)
		if digits != "" {
			query = query.Where("LOWER(nome) LIKE ? OR documento LIKE ? OR telefone LIKE ?", pattern, "%"+digits+"%", "%"+digits+"%")
		} else {
			query = query.Where("LOWER(nome) LIKE ?", pattern)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("nome ASC").Find(&clientes).Error
	return clientes, total, err
}

// FindByDocumento looks a cliente up by document, ignoring punctuation
func (r *ClienteRepository) FindByDocumento(ctx context.Context, documento string) (*domain.Cliente, error) {
	var cliente domain.Cliente
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Where("documento = ?", domain.OnlyDigits(documento)))
	if err := query.First(&cliente).Error; err != nil {
		return nil, err
	}
	return &cliente, nil
}

// DocumentoInUse reports whether another cliente of the tenant holds documento
func (r *ClienteRepository) DocumentoInUse(ctx context.Context, documento string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(&domain.Cliente{})).
		Where("documento = ? AND id <> ?", domain.OnlyDigits(documento), excludeID)
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *ClienteRepository) CountOrdens(ctx context.Context, clienteID uuid.UUID) (int64, error) {
	var count int64
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(&domain.OrdemServico{})).
		Where("cliente_id = ?", clienteID)
	err := query.Count(&count).Error
	return count, err
}
