package handler

import (
	"context"
	"net/http"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogHandler serves categorias, servicos and produtos
type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// catalogOps binds the shared item endpoints to servicos or produtos
type catalogOps struct {
	entity string
	path   string
	list   func(ctx context.Context, onlyActive bool, search string) ([]domain.CatalogItemDTO, error)
	create func(ctx context.Context, req *domain.CatalogItemRequest) (*domain.CatalogItemDTO, error)
	update func(ctx context.Context, id uuid.UUID, req *domain.CatalogItemRequest) (*domain.CatalogItemDTO, error)
	toggle func(ctx context.Context, id uuid.UUID) (*domain.CatalogItemDTO, error)
	remove func(ctx context.Context, id uuid.UUID) error
}

func (h *CatalogHandler) servicos() catalogOps {
	return catalogOps{
		entity: "servico",
		path:   "/api/v1/servicos/",
		list:   h.catalogService.ListServicos,
		create: h.catalogService.CreateServico,
		update: h.catalogService.UpdateServico,
		toggle: h.catalogService.ToggleServico,
		remove: h.catalogService.DeleteServico,
	}
}

func (h *CatalogHandler) produtos() catalogOps {
	return catalogOps{
		entity: "produto",
		path:   "/api/v1/produtos/",
		list:   h.catalogService.ListProdutos,
		create: h.catalogService.CreateProduto,
		update: h.catalogService.UpdateProduto,
		toggle: h.catalogService.ToggleProduto,
		remove: h.catalogService.DeleteProduto,
	}
}

func (h *CatalogHandler) listItems(ops catalogOps, w http.ResponseWriter, r *http.Request) {
	items, err := ops.list(r.Context(), parseBoolQuery(r, "ativos", false), r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list "+ops.entity+"s")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) createItem(ops catalogOps, w http.ResponseWriter, r *http.Request) {
	var req domain.CatalogItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := ops.create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create "+ops.entity)
		return
	}

	w.Header().Set("Location", ops.path+item.ID.String())
	respondJSON(w, http.StatusCreated, item)
}

func (h *CatalogHandler) updateItem(ops catalogOps, w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", ops.entity)
	if !ok {
		return
	}

	var req domain.CatalogItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := ops.update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update "+ops.entity)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) toggleItem(ops catalogOps, w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", ops.entity)
	if !ok {
		return
	}

	item, err := ops.toggle(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "toggle "+ops.entity)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) deleteItem(ops catalogOps, w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", ops.entity)
	if !ok {
		return
	}

	if err := ops.remove(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete "+ops.entity)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListServicos godoc
// @Summary List servicos
// @Tags Catalog
// @Produce json
// @Param ativos query bool false "Only active entries" default(false)
// @Param search query string false "Search by nome"
// @Success 200 {array} domain.CatalogItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /servicos [get]
func (h *CatalogHandler) ListServicos(w http.ResponseWriter, r *http.Request) {
	h.listItems(h.servicos(), w, r)
}

// CreateServico godoc
// @Summary Create servico
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CatalogItemRequest true "Servico data"
// @Success 201 {object} domain.CatalogItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /servicos [post]
func (h *CatalogHandler) CreateServico(w http.ResponseWriter, r *http.Request) {
	h.createItem(h.servicos(), w, r)
}

// UpdateServico godoc
// @Summary Update servico
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Servico ID" format(uuid)
// @Param request body domain.CatalogItemRequest true "Servico data"
// @Success 200 {object} domain.CatalogItemDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /servicos/{id} [put]
func (h *CatalogHandler) UpdateServico(w http.ResponseWriter, r *http.Request) {
	h.updateItem(h.servicos(), w, r)
}

// ToggleServico godoc
// @Summary Toggle servico active flag
// @Tags Catalog
// @Produce json
// @Param id path string true "Servico ID" format(uuid)
// @Success 200 {object} domain.CatalogItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /servicos/{id}/toggle [post]
func (h *CatalogHandler) ToggleServico(w http.ResponseWriter, r *http.Request) {
	h.toggleItem(h.servicos(), w, r)
}

// DeleteServico godoc
// @Summary Delete servico
// @Tags Catalog
// @Param id path string true "Servico ID" format(uuid)
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /servicos/{id} [delete]
func (h *CatalogHandler) DeleteServico(w http.ResponseWriter, r *http.Request) {
	h.deleteItem(h.servicos(), w, r)
}

// ListProdutos godoc
// @Summary List produtos
// @Tags Catalog
// @Produce json
// @Param ativos query bool false "Only active entries" default(false)
// @Param search query string false "Search by nome"
// @Success 200 {array} domain.CatalogItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /produtos [get]
func (h *CatalogHandler) ListProdutos(w http.ResponseWriter, r *http.Request) {
	h.listItems(h.produtos(), w, r)
}

// CreateProduto godoc
// @Summary Create produto
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CatalogItemRequest true "Produto data"
// @Success 201 {object} domain.CatalogItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /produtos [post]
func (h *CatalogHandler) CreateProduto(w http.ResponseWriter, r *http.Request) {
	h.createItem(h.produtos(), w, r)
}

// UpdateProduto godoc
// @Summary Update produto
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Produto ID" format(uuid)
// @Param request body domain.CatalogItemRequest true "Produto data"
// @Success 200 {object} domain.CatalogItemDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /produtos/{id} [put]
func (h *CatalogHandler) UpdateProduto(w http.ResponseWriter, r *http.Request) {
	h.updateItem(h.produtos(), w, r)
}

// ToggleProduto godoc
// @Summary Toggle produto active flag
// @Tags Catalog
// @Produce json
// @Param id path string true "Produto ID" format(uuid)
// @Success 200 {object} domain.CatalogItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /produtos/{id}/toggle [post]
func (h *CatalogHandler) ToggleProduto(w http.ResponseWriter, r *http.Request) {
	h.toggleItem(h.produtos(), w, r)
}

// DeleteProduto godoc
// @Summary Delete produto
// @Tags Catalog
// @Param id path string true "Produto ID" format(uuid)
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /produtos/{id} [delete]
func (h *CatalogHandler) DeleteProduto(w http.ResponseWriter, r *http.Request) {
	h.deleteItem(h.produtos(), w, r)
}

// ListCategorias godoc
// @Summary List categorias
// @Tags Catalog
// @Produce json
// @Param ativos query bool false "Only active entries" default(false)
// @Success 200 {array} domain.CategoriaDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /categorias [get]
func (h *CatalogHandler) ListCategorias(w http.ResponseWriter, r *http.Request) {
	categorias, err := h.catalogService.ListCategorias(r.Context(), parseBoolQuery(r, "ativos", false))
	if err != nil {
		respondServiceError(w, h.logger, err, "list categorias")
		return
	}
	respondJSON(w, http.StatusOK, categorias)
}

// CreateCategoria godoc
// @Summary Create categoria
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CategoriaRequest true "Categoria data"
// @Success 201 {object} domain.CategoriaDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /categorias [post]
func (h *CatalogHandler) CreateCategoria(w http.ResponseWriter, r *http.Request) {
	var req domain.CategoriaRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	categoria, err := h.catalogService.CreateCategoria(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create categoria")
		return
	}

	w.Header().Set("Location", "/api/v1/categorias/"+categoria.ID.String())
	respondJSON(w, http.StatusCreated, categoria)
}

// UpdateCategoria godoc
// @Summary Update categoria
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Categoria ID" format(uuid)
// @Param request body domain.CategoriaRequest true "Categoria data"
// @Success 200 {object} domain.CategoriaDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /categorias/{id} [put]
func (h *CatalogHandler) UpdateCategoria(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "categoria")
	if !ok {
		return
	}

	var req domain.CategoriaRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	categoria, err := h.catalogService.UpdateCategoria(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update categoria")
		return
	}
	respondJSON(w, http.StatusOK, categoria)
}

// ToggleCategoria godoc
// @Summary Toggle categoria active flag
// @Tags Catalog
// @Produce json
// @Param id path string true "Categoria ID" format(uuid)
// @Success 200 {object} domain.CategoriaDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /categorias/{id}/toggle [post]
func (h *CatalogHandler) ToggleCategoria(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "categoria")
	if !ok {
		return
	}

	categoria, err := h.catalogService.ToggleCategoria(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "toggle categoria")
		return
	}
	respondJSON(w, http.StatusOK, categoria)
}

// DeleteCategoria godoc
// @Summary Delete categoria
// @Description Categorias referenced by servicos or produtos cannot be deleted
// @Tags Catalog
// @Param id path string true "Categoria ID" format(uuid)
// @Success 204
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /categorias/{id} [delete]
func (h *CatalogHandler) DeleteCategoria(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "categoria")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategoria(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete categoria")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
