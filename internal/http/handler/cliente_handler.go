package handler

import (
	"net/http"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/service"
	"go.uber.org/zap"
)

type ClienteHandler struct {
	clienteService *service.ClienteService
	logger         *zap.Logger
}

func NewClienteHandler(clienteService *service.ClienteService, logger *zap.Logger) *ClienteHandler {
	return &ClienteHandler{
		clienteService: clienteService,
		logger:         logger,
	}
}

// List godoc
// @Summary List clientes
// @Description Paginated list of the company's clientes, searchable by name, documento or phone
// @Tags Clientes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by nome, documento or telefone"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ClienteDTO}
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clientes [get]
func (h *ClienteHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 20)

	result, err := h.clienteService.List(r.Context(), page, pageSize, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list clientes")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Lookup godoc
// @Summary Find cliente by documento
// @Description Exact lookup by CPF or CNPJ, with or without punctuation. Used by the order form before creating a new cliente.
// @Tags Clientes
// @Produce json
// @Param documento query string true "CPF or CNPJ"
// @Success 200 {object} domain.ClienteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clientes/lookup [get]
func (h *ClienteHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	documento := r.URL.Query().Get("documento")
	if documento == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'documento' is required")
		return
	}

	cliente, err := h.clienteService.FindByDocumento(r.Context(), documento)
	if err != nil {
		respondServiceError(w, h.logger, err, "find cliente")
		return
	}

	respondJSON(w, http.StatusOK, cliente)
}

// Create godoc
// @Summary Create cliente
// @Description Register a new cliente. The documento must be unique within the company.
// @Tags Clientes
// @Accept json
// @Produce json
// @Param request body domain.CreateClienteRequest true "Cliente data"
// @Success 201 {object} domain.ClienteDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clientes [post]
func (h *ClienteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClienteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cliente, err := h.clienteService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create cliente")
		return
	}

	w.Header().Set("Location", "/api/v1/clientes/"+cliente.ID.String())
	respondJSON(w, http.StatusCreated, cliente)
}

// GetByID godoc
// @Summary Get cliente
// @Description Cliente with its order history, newest first
// @Tags Clientes
// @Produce json
// @Param id path string true "Cliente ID" format(uuid)
// @Success 200 {object} domain.ClienteWithOrdensDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clientes/{id} [get]
func (h *ClienteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "cliente")
	if !ok {
		return
	}

	cliente, err := h.clienteService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get cliente")
		return
	}

	respondJSON(w, http.StatusOK, cliente)
}

// Update godoc
// @Summary Update cliente
// @Tags Clientes
// @Accept json
// @Produce json
// @Param id path string true "Cliente ID" format(uuid)
// @Param request body domain.UpdateClienteRequest true "Cliente data"
// @Success 200 {object} domain.ClienteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clientes/{id} [put]
func (h *ClienteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "cliente")
	if !ok {
		return
	}

	var req domain.UpdateClienteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cliente, err := h.clienteService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update cliente")
		return
	}

	respondJSON(w, http.StatusOK, cliente)
}

// Delete godoc
// @Summary Delete cliente
// @Description Clientes that already have orders cannot be deleted
// @Tags Clientes
// @Param id path string true "Cliente ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clientes/{id} [delete]
func (h *ClienteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "cliente")
	if !ok {
		return
	}

	if err := h.clienteService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete cliente")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
