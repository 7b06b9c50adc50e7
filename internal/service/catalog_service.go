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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService manages categorias, servicos and produtos
type CatalogService struct {
	categoriaRepo *repository.CatalogRepository[domain.Categoria]
	servicoRepo   *repository.CatalogRepository[domain.Servico]
	produtoRepo   *repository.CatalogRepository[domain.Produto]
	logger        *zap.Logger
}

func NewCatalogService(
	categoriaRepo *repository.CatalogRepository[domain.Categoria],
	servicoRepo *repository.CatalogRepository[domain.Servico],
	produtoRepo *repository.CatalogRepository[domain.Produto],
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		categoriaRepo: categoriaRepo,
		servicoRepo:   servicoRepo,
		produtoRepo:   produtoRepo,
		logger:        logger,
	}
}

// Categorias

func (s *CatalogService) ListCategorias(ctx context.Context, onlyActive bool) ([]domain.CategoriaDTO, error) {
	categorias, err := s.categoriaRepo.List(ctx, onlyActive, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list categorias: %w", err)
	}
	dtos := make([]domain.CategoriaDTO, len(categorias))
	for i := range categorias {
		dtos[i] = mapper.ToCategoriaDTO(&categorias[i])
	}
	return dtos, nil
}

func (s *CatalogService) CreateCategoria(ctx context.Context, req *domain.CategoriaRequest) (*domain.CategoriaDTO, error) {
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, ErrNoCompany
	}
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return nil, domain.NewValidationError("nome", "is required")
	}

	categoria := &domain.Categoria{CompanyID: companyID, Nome: nome, Ativo: true}
	if err := s.categoriaRepo.Create(ctx, categoria); err != nil {
		return nil, fmt.Errorf("failed to create categoria: %w", err)
	}
	dto := mapper.ToCategoriaDTO(categoria)
	return &dto, nil
}

func (s *CatalogService) UpdateCategoria(ctx context.Context, id uuid.UUID, req *domain.CategoriaRequest) (*domain.CategoriaDTO, error) {
	categoria, err := s.categoriaRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, "categoria", id)
	}
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return nil, domain.NewValidationError("nome", "is required")
	}
	categoria.Nome = nome
	if err := s.categoriaRepo.Update(ctx, categoria); err != nil {
		return nil, fmt.Errorf("failed to update categoria: %w", err)
	}
	dto := mapper.ToCategoriaDTO(categoria)
	return &dto, nil
}

func (s *CatalogService) ToggleCategoria(ctx context.Context, id uuid.UUID) (*domain.CategoriaDTO, error) {
	categoria, err := s.categoriaRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, "categoria", id)
	}
	categoria.Ativo = !categoria.Ativo
	if err := s.categoriaRepo.Update(ctx, categoria); err != nil {
		return nil, fmt.Errorf("failed to update categoria: %w", err)
	}
	dto := mapper.ToCategoriaDTO(categoria)
	return &dto, nil
}

// DeleteCategoria removes a categoria no servico or produto points at
func (s *CatalogService) DeleteCategoria(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoriaRepo.GetByID(ctx, nil, id); err != nil {
		return notFound(err, "categoria", id)
	}
	servicos, err := s.servicoRepo.CountByCategoria(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count servicos: %w", err)
	}
	produtos, err := s.produtoRepo.CountByCategoria(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count produtos: %w", err)
	}
	if servicos+produtos > 0 {
		return ErrCategoriaInUse
	}
	if err := s.categoriaRepo.Delete(ctx, id); err != nil {
		return notFound(err, "categoria", id)
	}
	return nil
}

// checkCatalogItem validates nome, price and the optional categoria
func (s *CatalogService) checkCatalogItem(ctx context.Context, req *domain.CatalogItemRequest) error {
	if strings.TrimSpace(req.Nome) == "" {
		return domain.NewValidationError("nome", "is required")
	}
	if req.Preco.IsNegative() {
		return domain.NewValidationError("preco", "must not be negative")
	}
	if req.CategoriaID != nil {
		if _, err := s.categoriaRepo.GetByID(ctx, nil, *req.CategoriaID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewValidationError("categoriaId", "unknown categoria")
			}
			return fmt.Errorf("failed to get categoria: %w", err)
		}
	}
	return nil
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(domain.MoneyPlaces)
}

// Servicos

func (s *CatalogService) ListServicos(ctx context.Context, onlyActive bool, search string) ([]domain.CatalogItemDTO, error) {
	servicos, err := s.servicoRepo.List(ctx, onlyActive, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list servicos: %w", err)
	}
	dtos := make([]domain.CatalogItemDTO, len(servicos))
	for i := range servicos {
		dtos[i] = mapper.ToServicoDTO(&servicos[i])
	}
	return dtos, nil
}

func (s *CatalogService) CreateServico(ctx context.Context, req *domain.CatalogItemRequest) (*domain.CatalogItemDTO, error) {
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, ErrNoCompany
	}
	if err := s.checkCatalogItem(ctx, req); err != nil {
		return nil, err
	}
	servico := &domain.Servico{
		CompanyID:   companyID,
		CategoriaID: req.CategoriaID,
		Nome:        strings.TrimSpace(req.Nome),
		Descricao:   req.Descricao,
		Preco:       money(req.Preco),
		Ativo:       true,
	}
	if err := s.servicoRepo.Create(ctx, servico); err != nil {
		return nil, fmt.Errorf("failed to create servico: %w", err)
	}
	dto := mapper.ToServicoDTO(servico)
	return &dto, nil
}

func (s *CatalogService) UpdateServico(ctx context.Context, id uuid.UUID, req *domain.CatalogItemRequest) (*domain.CatalogItemDTO, error) {
	servico, err := s.servicoRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, "servico", id)
	}
	if err := s.checkCatalogItem(ctx, req); err != nil {
		return nil, err
	}
	servico.CategoriaID = req.CategoriaID
	servico.Nome = strings.TrimSpace(req.Nome)
	servico.Descricao = req.Descricao
	servico.Preco = money(req.Preco)
	if err := s.servicoRepo.Update(ctx, servico); err != nil {
		return nil, fmt.Errorf("failed to update servico: %w", err)
	}
	dto := mapper.ToServicoDTO(servico)
	return &dto, nil
}

func (s *CatalogService) ToggleServico(ctx context.Context, id uuid.UUID) (*domain.CatalogItemDTO, error) {
	servico, err := s.servicoRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, "servico", id)
	}
	servico.Ativo = !servico.Ativo
	if err := s.servicoRepo.Update(ctx, servico); err != nil {
		return nil, fmt.Errorf("failed to update servico: %w", err)
	}
	dto := mapper.ToServicoDTO(servico)
	return &dto, nil
}

func (s *CatalogService) DeleteServico(ctx context.Context, id uuid.UUID) error {
	if err := s.servicoRepo.Delete(ctx, id); err != nil {
		return notFound(err, "servico", id)
	}
	return nil
}

// Produtos

func (s *CatalogService) ListProdutos(ctx context.Context, onlyActive bool, search string) ([]domain.CatalogItemDTO, error) {
	produtos, err := s.produtoRepo.List(ctx, onlyActive, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list produtos: %w", err)
	}
	dtos := make([]domain.CatalogItemDTO, len(produtos))
	for i := range produtos {
		dtos[i] = mapper.ToProdutoDTO(&produtos[i])
	}
	return dtos, nil
}

func (s *CatalogService) CreateProduto(ctx context.Context, req *domain.CatalogItemRequest) (*domain.CatalogItemDTO, error) {
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, ErrNoCompany
	}
	if err := s.checkCatalogItem(ctx, req); err != nil {
		return nil, err
	}
	produto := &domain.Produto{
		CompanyID:   companyID,
		CategoriaID: req.CategoriaID,
		Nome:        strings.TrimSpace(req.Nome),
		Descricao:   req.Descricao,
		Preco:       money(req.Preco),
		Ativo:       true,
	}
	if err := s.produtoRepo.Create(ctx, produto); err != nil {
		return nil, fmt.Errorf("failed to create produto: %w", err)
	}
	dto := mapper.ToProdutoDTO(produto)
	return &dto, nil
}

func (s *CatalogService) UpdateProduto(ctx context.Context, id uuid.UUID, req *domain.CatalogItemRequest) (*domain.CatalogItemDTO, error) {
	produto, err := s.produtoRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, "produto", id)
	}
	if err := s.checkCatalogItem(ctx, req); err != nil {
		return nil, err
	}
	produto.CategoriaID = req.CategoriaID
	produto.Nome = strings.TrimSpace(req.Nome)
	produto.Descricao = req.Descricao
	produto.Preco = money(req.Preco)
	if err := s.produtoRepo.Update(ctx, produto); err != nil {
		return nil, fmt.Errorf("failed to update produto: %w", err)
	}
	dto := mapper.ToProdutoDTO(produto)
	return &dto, nil
}

func (s *CatalogService) ToggleProduto(ctx context.Context, id uuid.UUID) (*domain.CatalogItemDTO, error) {
	produto, err := s.produtoRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, "produto", id)
	}
	produto.Ativo = !produto.Ativo
	if err := s.produtoRepo.Update(ctx, produto); err != nil {
		return nil, fmt.Errorf("failed to update produto: %w", err)
	}
	dto := mapper.ToProdutoDTO(produto)
	return &dto, nil
}

func (s *CatalogService) DeleteProduto(ctx context.Context, id uuid.UUID) error {
	if err := s.produtoRepo.Delete(ctx, id); err != nil {
		return notFound(err, "produto", id)
	}
	return nil
}
