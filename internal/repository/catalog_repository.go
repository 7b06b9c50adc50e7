package repository

import (
	"context"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogEntity is a tenant-owned catalog row
type CatalogEntity interface {
	domain.Categoria | domain.Servico | domain.Produto
}

// CatalogRepository is the shared CRUD for categorias, servicos and produtos
type CatalogRepository[T CatalogEntity] struct {
	db *gorm.DB
}

func NewCatalogRepository[T CatalogEntity](db *gorm.DB) *CatalogRepository[T] {
	return &CatalogRepository[T]{db: db}
}

func (r *CatalogRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *CatalogRepository[T]) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*T, error) {
	var entity T
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Where("id = ?", id))
	if err := query.First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// List returns entries ordered by nome, optionally only active ones and matching search
func (r *CatalogRepository[T]) List(ctx context.Context, onlyActive bool, search string) ([]T, error) {
	var entities []T
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(new(T)))
	if onlyActive {
		query = query.Where("ativo = ?", true)
	}
	if search != "" {
		query = query.Where("LOWER(nome) LIKE ?", likePattern(search))
	}
	err := query.Order("nome ASC").Find(&entities).Error
	return entities, err
}

func (r *CatalogRepository[T]) Update(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

func (r *CatalogRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyCompanyFilter(ctx, r.db.WithContext(ctx)).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByCategoria counts entries that reference categoriaID
func (r *CatalogRepository[T]) CountByCategoria(ctx context.Context, categoriaID uuid.UUID) (int64, error) {
	var count int64
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(new(T))).Where("categoria_id = ?", categoriaID)
	err := query.Count(&count).Error
	return count, err
}
