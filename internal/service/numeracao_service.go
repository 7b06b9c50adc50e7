package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/mapper"
	"github.com/estofaria/os-api/internal/repository"
	"go.uber.org/zap"
)

// NumeracaoService exposes the tenant's order-number counter.
// Numbers themselves are issued by OrdemService inside the creation transaction.
//
// Format: {PREFIXO}{NUMERO zero-padded to PadWidth}
// Example: OS-0042
type NumeracaoService struct {
	repo   *repository.NumeracaoRepository
	cfg    config.NumberingConfig
	logger *zap.Logger
}

func NewNumeracaoService(repo *repository.NumeracaoRepository, cfg config.NumberingConfig, logger *zap.Logger) *NumeracaoService {
	return &NumeracaoService{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *NumeracaoService) Get(ctx context.Context) (*domain.NumeracaoDTO, error) {
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, ErrNoCompany
	}
	row, err := s.repo.Get(ctx, companyID, s.cfg.DefaultPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get numeracao: %w", err)
	}
	dto := mapper.ToNumeracaoDTO(row, s.cfg.PadWidth)
	return &dto, nil
}

// Update changes prefix and next number. The next number may only move forward
// so an already issued number is never handed out again.
func (s *NumeracaoService) Update(ctx context.Context, req *domain.UpdateNumeracaoRequest) (*domain.NumeracaoDTO, error) {
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, ErrNoCompany
	}
	if req.ProximoNumero < 1 {
		return nil, domain.NewValidationError("proximoNumero", "must be at least 1")
	}
	prefixo := strings.TrimSpace(req.Prefixo)

	row, err := s.repo.Update(ctx, companyID, s.cfg.DefaultPrefix, prefixo, req.ProximoNumero,
		func(current *domain.NumeracaoOS) error {
			if req.ProximoNumero < current.ProximoNumero {
				return ErrNumeracaoRegression
			}
			return nil
		})
	if err != nil {
		return nil, wrapUnlessDomain(err, "update numeracao")
	}

	s.logger.Info("numeracao updated",
		zap.String("company_id", companyID.String()),
		zap.String("prefixo", row.Prefixo),
		zap.Int64("proximo_numero", row.ProximoNumero))

	dto := mapper.ToNumeracaoDTO(row, s.cfg.PadWidth)
	return &dto, nil
}
