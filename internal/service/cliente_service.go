package service

import (
	"context"
	"errors"
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

type ClienteService struct {
	clienteRepo *repository.ClienteRepository
	ordemRepo   *repository.OrdemServicoRepository
	logger      *zap.Logger
}

func NewClienteService(
	clienteRepo *repository.ClienteRepository,
	ordemRepo *repository.OrdemServicoRepository,
	logger *zap.Logger,
) *ClienteService {
	return &ClienteService{
		clienteRepo: clienteRepo,
		ordemRepo:   ordemRepo,
		logger:      logger,
	}
}

// normalizeCliente validates the request and copies it onto cliente with
// document, phone and CEP reduced to digits
func normalizeCliente(req *domain.CreateClienteRequest, cliente *domain.Cliente) error {
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return domain.NewValidationError("nome", "is required")
	}
	if !domain.ValidateDocumento(req.TipoDocumento, req.Documento) {
		return domain.NewValidationError("documento", fmt.Sprintf("invalid %s", req.TipoDocumento))
	}
	telefone := domain.OnlyDigits(req.Telefone)
	if len(telefone) < 10 || len(telefone) > 11 {
		return domain.NewValidationError("telefone", "must have 10 or 11 digits")
	}

	cliente.Nome = nome
	cliente.TipoDocumento = req.TipoDocumento
	cliente.Documento = domain.OnlyDigits(req.Documento)
	cliente.Telefone = telefone
	cliente.Email = strings.TrimSpace(req.Email)
	cliente.CEP = domain.OnlyDigits(req.CEP)
	cliente.Rua = req.Rua
	cliente.Numero = req.Numero
	cliente.Bairro = req.Bairro
	cliente.Cidade = req.Cidade
	cliente.Estado = strings.ToUpper(req.Estado)
	return nil
}

func (s *ClienteService) Create(ctx context.Context, req *domain.CreateClienteRequest) (*domain.ClienteDTO, error) {
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, ErrNoCompany
	}

	cliente := &domain.Cliente{CompanyID: companyID}
	if err := normalizeCliente(req, cliente); err != nil {
		return nil, err
	}

	inUse, err := s.clienteRepo.DocumentoInUse(ctx, cliente.Documento, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check documento: %w", err)
	}
	if inUse {
		return nil, ErrDocumentoInUse
	}

	if err := s.clienteRepo.Create(ctx, cliente); err != nil {
		return nil, conflictOnDuplicate(err, ErrDocumentoInUse, "create cliente")
	}

	s.logger.Info("cliente created",
		zap.String("cliente_id", cliente.ID.String()),
		zap.String("company_id", companyID.String()))

	dto := mapper.ToClienteDTO(cliente)
	return &dto, nil
}

// GetByID returns the cliente with their orders, newest first
func (s *ClienteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClienteWithOrdensDTO, error) {
	cliente, err := s.clienteRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, "cliente", id)
	}

	ordens, err := s.ordemRepo.ListByCliente(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list cliente orders: %w", err)
	}

	return &domain.ClienteWithOrdensDTO{
		ClienteDTO: mapper.ToClienteDTO(cliente),
		Ordens:     mapper.ToOrdemDTOs(ordens, nil),
	}, nil
}

// FindByDocumento looks a cliente up by CPF or CNPJ in any punctuation
func (s *ClienteService) FindByDocumento(ctx context.Context, documento string) (*domain.ClienteDTO, error) {
	digits := domain.OnlyDigits(documento)
	if digits == "" {
		return nil, domain.NewValidationError("documento", "is required")
	}
	cliente, err := s.clienteRepo.FindByDocumento(ctx, digits)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Entity: "cliente"}
		}
		return nil, fmt.Errorf("failed to find cliente: %w", err)
	}
	dto := mapper.ToClienteDTO(cliente)
	return &dto, nil
}

func (s *ClienteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateClienteRequest) (*domain.ClienteDTO, error) {
	cliente, err := s.clienteRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, "cliente", id)
	}

	if err := normalizeCliente(req, cliente); err != nil {
		return nil, err
	}

	inUse, err := s.clienteRepo.DocumentoInUse(ctx, cliente.Documento, cliente.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check documento: %w", err)
	}
	if inUse {
		return nil, ErrDocumentoInUse
	}

	if err := s.clienteRepo.Update(ctx, cliente); err != nil {
		return nil, conflictOnDuplicate(err, ErrDocumentoInUse, "update cliente")
	}

	dto := mapper.ToClienteDTO(cliente)
	return &dto, nil
}

// Delete removes a cliente without orders
func (s *ClienteService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clienteRepo.GetByID(ctx, nil, id); err != nil {
		return notFound(err, "cliente", id)
	}

	count, err := s.clienteRepo.CountOrdens(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count cliente orders: %w", err)
	}
	if count > 0 {
		return ErrClienteHasOrdens
	}

	if err := s.clienteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete cliente: %w", err)
	}
	return nil
}

func (s *ClienteService) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	clientes, total, err := s.clienteRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list clientes: %w", err)
	}

	dtos := make([]domain.ClienteDTO, len(clientes))
	for i := range clientes {
		dtos[i] = mapper.ToClienteDTO(&clientes[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}
