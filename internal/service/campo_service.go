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
)

// CampoService manages the tenant's custom order fields
type CampoService struct {
	campoRepo *repository.CampoOSRepository
	logger    *zap.Logger
}

func NewCampoService(campoRepo *repository.CampoOSRepository, logger *zap.Logger) *CampoService {
	return &CampoService{
		campoRepo: campoRepo,
		logger:    logger,
	}
}

func applyCampoRequest(req *domain.CreateCampoRequest, campo *domain.CampoOS) error {
	if !req.Tipo.IsValid() {
		return domain.NewValidationError("tipo", "unsupported field type")
	}
	opcoes := domain.ParseOpcoes(req.Opcoes, req.OpcoesTexto)
	if req.Tipo == domain.CampoTipoSelect && len(opcoes) == 0 {
		return domain.NewValidationError("opcoes", "select fields need at least one option")
	}
	if req.Tipo != domain.CampoTipoSelect {
		opcoes = nil
	}

	campo.Nome = strings.TrimSpace(req.Nome)
	campo.Tipo = req.Tipo
	campo.Obrigatorio = req.Obrigatorio
	campo.EditavelAposFinalizacao = req.EditavelAposFinalizacao
	campo.Opcoes = opcoes
	return nil
}

func (s *CampoService) List(ctx context.Context, onlyActive bool) ([]domain.CampoOSDTO, error) {
	campos, err := s.campoRepo.List(ctx, nil, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list campos: %w", err)
	}
	dtos := make([]domain.CampoOSDTO, len(campos))
	for i := range campos {
		dtos[i] = mapper.ToCampoOSDTO(&campos[i])
	}
	return dtos, nil
}

// Create adds a field at the end of the display order
func (s *CampoService) Create(ctx context.Context, req *domain.CreateCampoRequest) (*domain.CampoOSDTO, error) {
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, ErrNoCompany
	}

	campo := &domain.CampoOS{CompanyID: companyID, Ativo: true}
	if err := applyCampoRequest(req, campo); err != nil {
		return nil, err
	}

	count, err := s.campoRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count campos: %w", err)
	}
	campo.Ordem = int(count)

	if err := s.campoRepo.Create(ctx, campo); err != nil {
		return nil, fmt.Errorf("failed to create campo: %w", err)
	}

	dto := mapper.ToCampoOSDTO(campo)
	return &dto, nil
}

func (s *CampoService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCampoRequest) (*domain.CampoOSDTO, error) {
	campo, err := s.campoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "campo", id)
	}
	if err := applyCampoRequest(req, campo); err != nil {
		return nil, err
	}
	if err := s.campoRepo.Update(ctx, campo); err != nil {
		return nil, fmt.Errorf("failed to update campo: %w", err)
	}

	dto := mapper.ToCampoOSDTO(campo)
	return &dto, nil
}

func (s *CampoService) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.CampoOSDTO, error) {
	campo, err := s.campoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "campo", id)
	}
	campo.Ativo = !campo.Ativo
	if err := s.campoRepo.Update(ctx, campo); err != nil {
		return nil, fmt.Errorf("failed to update campo: %w", err)
	}

	dto := mapper.ToCampoOSDTO(campo)
	return &dto, nil
}

// Delete removes the field together with every value stored for it
func (s *CampoService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.campoRepo.Delete(ctx, id); err != nil {
		return notFound(err, "campo", id)
	}
	return nil
}
