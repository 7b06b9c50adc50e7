package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/mapper"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatusConfigService manages the tenant's configurable status flow
type StatusConfigService struct {
	db         *gorm.DB
	statusRepo *repository.StatusConfigRepository
	logger     *zap.Logger
}

func NewStatusConfigService(db *gorm.DB, statusRepo *repository.StatusConfigRepository, logger *zap.Logger) *StatusConfigService {
	return &StatusConfigService{
		db:         db,
		statusRepo: statusRepo,
		logger:     logger,
	}
}

func validateStatusFlags(isFinal, isCancelamento bool) error {
	if isFinal && isCancelamento {
		return domain.NewValidationError("isCancelamento", "a status cannot be final and cancellation at once")
	}
	return nil
}

// List returns every status of the tenant in flow order
func (s *StatusConfigService) List(ctx context.Context) ([]domain.StatusConfigDTO, error) {
	statuses, err := s.statusRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	domain.SortStatuses(statuses)
	return mapper.ToStatusConfigDTOs(statuses), nil
}

// Create appends a status at the end of the flow
func (s *StatusConfigService) Create(ctx context.Context, req *domain.CreateStatusRequest) (*domain.StatusConfigDTO, error) {
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, ErrNoCompany
	}
	if err := validateStatusFlags(req.IsFinal, req.IsCancelamento); err != nil {
		return nil, err
	}

	status := &domain.StatusConfig{
		CompanyID:      companyID,
		Nome:           strings.TrimSpace(req.Nome),
		Cor:            req.Cor,
		Ativo:          true,
		IsFinal:        req.IsFinal,
		IsCancelamento: req.IsCancelamento,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if status.IsCancelamento {
			n, err := s.statusRepo.CountActiveCancelamento(ctx, tx, uuid.Nil)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrCancelamentoExists
			}
		}
		count, err := s.statusRepo.Count(ctx, tx)
		if err != nil {
			return err
		}
		status.Ordem = int(count)
		return s.statusRepo.Create(ctx, tx, status)
	})
	if err != nil {
		return nil, wrapUnlessDomain(err, "create status")
	}

	dto := mapper.ToStatusConfigDTO(status)
	return &dto, nil
}

func (s *StatusConfigService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateStatusRequest) (*domain.StatusConfigDTO, error) {
	if err := validateStatusFlags(req.IsFinal, req.IsCancelamento); err != nil {
		return nil, err
	}

	var status *domain.StatusConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		status, err = s.statusRepo.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, "status", id)
		}
		if req.IsFinal != status.IsFinal || req.IsCancelamento != status.IsCancelamento {
			inUse, err := s.statusRepo.IsReferenced(ctx, tx, id)
			if err != nil {
				return err
			}
			if inUse {
				return ErrStatusFlagsInUse
			}
		}
		if req.IsCancelamento && status.Ativo {
			n, err := s.statusRepo.CountActiveCancelamento(ctx, tx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrCancelamentoExists
			}
		}
		status.Nome = strings.TrimSpace(req.Nome)
		status.Cor = req.Cor
		status.IsFinal = req.IsFinal
		status.IsCancelamento = req.IsCancelamento
		if req.Ordem != nil {
			status.Ordem = *req.Ordem
		}
		return s.statusRepo.Update(ctx, tx, status)
	})
	if err != nil {
		return nil, wrapUnlessDomain(err, "update status")
	}

	dto := mapper.ToStatusConfigDTO(status)
	return &dto, nil
}

// ToggleActive flips the status between active and inactive. Activating a
// cancellation status fails when another one is already active.
func (s *StatusConfigService) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.StatusConfigDTO, error) {
	var status *domain.StatusConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		status, err = s.statusRepo.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, "status", id)
		}
		if !status.Ativo && status.IsCancelamento {
			n, err := s.statusRepo.CountActiveCancelamento(ctx, tx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrCancelamentoExists
			}
		}
		status.Ativo = !status.Ativo
		return s.statusRepo.Update(ctx, tx, status)
	})
	if err != nil {
		return nil, wrapUnlessDomain(err, "toggle status")
	}

	dto := mapper.ToStatusConfigDTO(status)
	return &dto, nil
}

// Reorder sets each listed status' ordem to its position in ids. Every id must
// belong to the tenant; statuses left out keep their ordem.
func (s *StatusConfigService) Reorder(ctx context.Context, ids []uuid.UUID) ([]domain.StatusConfigDTO, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, domain.NewValidationError("ids", "duplicate status "+id.String())
		}
		seen[id] = struct{}{}
	}

	var statuses []domain.StatusConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for pos, id := range ids {
			if _, err := s.statusRepo.GetByID(ctx, tx, id); err != nil {
				return notFound(err, "status", id)
			}
			if err := s.statusRepo.SetOrdem(ctx, tx, id, pos); err != nil {
				return err
			}
		}
		var err error
		statuses, err = s.statusRepo.List(ctx, tx)
		return err
	})
	if err != nil {
		return nil, wrapUnlessDomain(err, "reorder statuses")
	}

	domain.SortStatuses(statuses)
	return mapper.ToStatusConfigDTOs(statuses), nil
}

// Delete removes a status that no order or ledger row references
func (s *StatusConfigService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.statusRepo.GetByID(ctx, tx, id); err != nil {
			return notFound(err, "status", id)
		}
		used, err := s.statusRepo.IsReferenced(ctx, tx, id)
		if err != nil {
			return err
		}
		if used {
			return ErrStatusInUse
		}
		return s.statusRepo.Delete(ctx, tx, id)
	})
	return wrapUnlessDomain(err, "delete status")
}

// SeedDefaults creates the default flow for a tenant that has no statuses yet
func (s *StatusConfigService) SeedDefaults(ctx context.Context) error {
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return ErrNoCompany
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.statusRepo.Count(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for i, def := range DefaultStatusFlow() {
			def.CompanyID = companyID
			def.Ordem = i
			def.Ativo = true
			if err := s.statusRepo.Create(ctx, tx, &def); err != nil {
				return fmt.Errorf("failed to seed status %s: %w", def.Nome, err)
			}
		}
		s.logger.Info("seeded default status flow", zap.String("company_id", companyID.String()))
		return nil
	})
}

// DefaultStatusFlow is the flow new tenants start with
func DefaultStatusFlow() []domain.StatusConfig {
	return []domain.StatusConfig{
		{Nome: "Criada", Cor: "#6b7280"},
		{Nome: "Em Produção", Cor: "#f59e0b"},
		{Nome: "Pronta", Cor: "#3b82f6"},
		{Nome: "Finalizada", Cor: "#10b981", IsFinal: true},
		{Nome: "Cancelada", Cor: "#ef4444", IsCancelamento: true},
	}
}
