package repository

import (
	"context"
	"time"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrdemFilter narrows order listings. Date bounds apply to data_abertura and are inclusive days.
type OrdemFilter struct {
	StatusID     *uuid.UUID
	ClienteID    *uuid.UUID
	VendedorID   *uuid.UUID
	Inicio       *time.Time
	Fim          *time.Time
	DataPrevista *time.Time
	Search       string
}

var ordemSortFields = map[string]string{
	"numeroOS":     "ordens_servico.numero_os",
	"dataAbertura": "ordens_servico.data_abertura",
	"dataPrevista": "ordens_servico.data_prevista",
	"valorTotal":   "ordens_servico.valor_total",
	"createdAt":    "ordens_servico.created_at",
}

type OrdemServicoRepository struct {
	db *gorm.DB
}

func NewOrdemServicoRepository(db *gorm.DB) *OrdemServicoRepository {
	return &OrdemServicoRepository{db: db}
}

func (r *OrdemServicoRepository) Create(ctx context.Context, tx *gorm.DB, ordem *domain.OrdemServico) error {
	return conn(ctx, r.db, tx).Omit("Cliente", "Status", "Itens", "Pagamentos", "Valores").Create(ordem).Error
}

// GetByID loads the order with its status. Orders of other tenants are not found.
func (r *OrdemServicoRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.OrdemServico, error) {
	var ordem domain.OrdemServico
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Preload("Status").Where("id = ?", id))
	if err := query.First(&ordem).Error; err != nil {
		return nil, err
	}
	return &ordem, nil
}

// GetForUpdate loads the order with its status and holds a row lock until tx ends.
// Lifecycle changes and edits of one order serialize on this lock.
func (r *OrdemServicoRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.OrdemServico, error) {
	var ordem domain.OrdemServico
	query := ApplyCompanyFilter(ctx, tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
	if err := query.First(&ordem).Error; err != nil {
		return nil, err
	}
	var status domain.StatusConfig
	if err := tx.WithContext(ctx).Where("id = ?", ordem.StatusID).First(&status).Error; err != nil {
		return nil, err
	}
	ordem.Status = &status
	return &ordem, nil
}

// GetDetail loads the order with every association used by the detail view and printouts
func (r *OrdemServicoRepository) GetDetail(ctx context.Context, id uuid.UUID) (*domain.OrdemServico, error) {
	var ordem domain.OrdemServico
	query := r.db.WithContext(ctx).
		Preload("Cliente").
		Preload("Status").
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Pagamentos", func(db *gorm.DB) *gorm.DB { return db.Order("data ASC") }).
		Preload("Valores.Campo").
		Where("id = ?", id)
	query = ApplyCompanyFilter(ctx, query)
	if err := query.First(&ordem).Error; err != nil {
		return nil, err
	}
	return &ordem, nil
}

// UpdateHeader writes the editable header columns
func (r *OrdemServicoRepository) UpdateHeader(ctx context.Context, tx *gorm.DB, ordem *domain.OrdemServico) error {
	return conn(ctx, r.db, tx).Model(ordem).
		Select("data_prevista", "observacoes", "vendedor_id", "updated_at").
		Updates(ordem).Error
}

// UpdateStatus writes the lifecycle columns set by a transition
func (r *OrdemServicoRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, ordem *domain.OrdemServico) error {
	return conn(ctx, r.db, tx).Model(ordem).
		Select("status_id", "data_finalizacao", "updated_at").
		Updates(ordem).Error
}

func (r *OrdemServicoRepository) UpdateTotal(ctx context.Context, tx *gorm.DB, ordem *domain.OrdemServico) error {
	return conn(ctx, r.db, tx).Model(ordem).
		Select("valor_total", "updated_at").
		Updates(ordem).Error
}

func (r *OrdemServicoRepository) applyFilter(query *gorm.DB, filter *OrdemFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.StatusID != nil {
		query = query.Where("ordens_servico.status_id = ?", *filter.StatusID)
	}
	if filter.ClienteID != nil {
		query = query.Where("ordens_servico.cliente_id = ?", *filter.ClienteID)
	}
	if filter.VendedorID != nil {
		query = query.Where("ordens_servico.vendedor_id = ?", *filter.VendedorID)
	}
	if filter.Inicio != nil {
		query = query.Where("ordens_servico.data_abertura >= ?", *filter.Inicio)
	}
	if filter.Fim != nil {
		query = query.Where("ordens_servico.data_abertura < ?", filter.Fim.AddDate(0, 0, 1))
	}
	if filter.DataPrevista != nil {
		query = query.Where("ordens_servico.data_prevista = ?", *filter.DataPrevista)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Joins("JOIN clientes ON clientes.id = ordens_servico.cliente_id").
			Where("LOWER(ordens_servico.numero_os) LIKE ? OR LOWER(clientes.nome) LIKE ?", pattern, pattern)
	}
	return query
}

// List returns a page of orders with cliente and status preloaded
func (r *OrdemServicoRepository) List(ctx context.Context, filter *OrdemFilter, sort SortConfig, page, pageSize int) ([]domain.OrdemServico, int64, error) {
	var ordens []domain.OrdemServico
	var total int64

	page, pageSize = NormalizePage(page, pageSize)
	query := r.db.WithContext(ctx).Model(&domain.OrdemServico{})
	query = ApplyCompanyFilterWithColumn(ctx, query, "ordens_servico.company_id")
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Cliente").
		Preload("Status").
		Preload("Pagamentos").
		Order(BuildOrderClause(sort, ordemSortFields, "ordens_servico.created_at")).
		Offset(offset).
		Limit(pageSize).
		Find(&ordens).Error
	return ordens, total, err
}

// ListAll returns every matching order, used by reports and the dashboard
func (r *OrdemServicoRepository) ListAll(ctx context.Context, filter *OrdemFilter) ([]domain.OrdemServico, error) {
	var ordens []domain.OrdemServico
	query := r.db.WithContext(ctx).Model(&domain.OrdemServico{})
	query = ApplyCompanyFilterWithColumn(ctx, query, "ordens_servico.company_id")
	query = r.applyFilter(query, filter)
	err := query.
		Preload("Cliente").
		Preload("Status").
		Preload("Pagamentos").
		Order("ordens_servico.created_at ASC").
		Find(&ordens).Error
	return ordens, err
}

// ListDueBefore returns orders with data_prevista before day, terminal ones included.
// Callers drop terminal statuses with the tenant's flow.
func (r *OrdemServicoRepository) ListDueBefore(ctx context.Context, day time.Time) ([]domain.OrdemServico, error) {
	var ordens []domain.OrdemServico
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(&domain.OrdemServico{})).
		Where("data_prevista IS NOT NULL AND data_prevista < ?", day)
	err := query.Order("data_prevista ASC").Find(&ordens).Error
	return ordens, err
}

// ListRecent returns the most recently opened orders
func (r *OrdemServicoRepository) ListRecent(ctx context.Context, limit int) ([]domain.OrdemServico, error) {
	var ordens []domain.OrdemServico
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(&domain.OrdemServico{}))
	err := query.
		Preload("Cliente").
		Preload("Status").
		Preload("Pagamentos").
		Order("created_at DESC").
		Limit(limit).
		Find(&ordens).Error
	return ordens, err
}

func (r *OrdemServicoRepository) ListByCliente(ctx context.Context, clienteID uuid.UUID) ([]domain.OrdemServico, error) {
	var ordens []domain.OrdemServico
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(&domain.OrdemServico{})).
		Where("cliente_id = ?", clienteID)
	err := query.Preload("Status").Order("created_at DESC").Find(&ordens).Error
	return ordens, err
}
