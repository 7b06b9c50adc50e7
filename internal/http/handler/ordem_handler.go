package handler

import (
	"net/http"
	"strconv"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/estofaria/os-api/internal/service"
	"go.uber.org/zap"
)

type OrdemHandler struct {
	ordemService *service.OrdemService
	printService *service.PrintService
	auditService *service.AuditLogService
	logger       *zap.Logger
}

func NewOrdemHandler(
	ordemService *service.OrdemService,
	printService *service.PrintService,
	auditService *service.AuditLogService,
	logger *zap.Logger,
) *OrdemHandler {
	return &OrdemHandler{
		ordemService: ordemService,
		printService: printService,
		auditService: auditService,
		logger:       logger,
	}
}

// List godoc
// @Summary List ordens de serviço
// @Description Paginated order list with optional filters. The date range applies to dataAbertura.
// @Tags Ordens
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param statusId query string false "Filter by status" format(uuid)
// @Param clienteId query string false "Filter by cliente" format(uuid)
// @Param vendedorId query string false "Filter by vendedor" format(uuid)
// @Param inicio query string false "Opened on or after (YYYY-MM-DD)"
// @Param fim query string false "Opened on or before (YYYY-MM-DD)"
// @Param search query string false "Search by numero or cliente nome"
// @Param sortBy query string false "Sort field" Enums(numeroOS, dataAbertura, dataPrevista, valorTotal, createdAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.OrdemDTO}
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens [get]
func (h *OrdemHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 20)

	filter := &repository.OrdemFilter{Search: r.URL.Query().Get("search")}
	var err error
	if filter.StatusID, err = queryUUID(r, "statusId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.ClienteID, err = queryUUID(r, "clienteId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.VendedorID, err = queryUUID(r, "vendedorId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Inicio, err = queryTime(r, "inicio"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Fim, err = queryTime(r, "fim"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sort := repository.SortConfig{
		Field: r.URL.Query().Get("sortBy"),
		Order: repository.ParseSortOrder(r.URL.Query().Get("sortOrder")),
	}

	result, err := h.ordemService.List(r.Context(), filter, sort, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "list ordens")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create ordem de serviço
// @Description Opens a new order with the next number of the company's sequence, in the initial status.
// @Description Items, custom field values and payments are validated before anything is written.
// @Tags Ordens
// @Accept json
// @Produce json
// @Param request body domain.CreateOrdemRequest true "Order data"
// @Success 201 {object} domain.OrdemDetalheDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens [post]
func (h *OrdemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrdemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ordem, err := h.ordemService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create ordem")
		return
	}

	w.Header().Set("Location", "/api/v1/ordens/"+ordem.ID.String())
	respondJSON(w, http.StatusCreated, ordem)
}

// GetByID godoc
// @Summary Get ordem de serviço
// @Description Order detail with cliente, status, items, custom fields, payments and status history
// @Tags Ordens
// @Produce json
// @Param id path string true "Ordem ID" format(uuid)
// @Success 200 {object} domain.OrdemDetalheDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id} [get]
func (h *OrdemHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}

	ordem, err := h.ordemService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get ordem")
		return
	}

	respondJSON(w, http.StatusOK, ordem)
}

// Update godoc
// @Summary Update ordem de serviço
// @Description Changes header fields and custom field values. Finalized or cancelled orders only accept
// @Description custom fields flagged as editable after finalization.
// @Tags Ordens
// @Accept json
// @Produce json
// @Param id path string true "Ordem ID" format(uuid)
// @Param request body domain.UpdateOrdemRequest true "Fields to change"
// @Success 200 {object} domain.OrdemDetalheDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id} [patch]
func (h *OrdemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}

	var req domain.UpdateOrdemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ordem, err := h.ordemService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update ordem")
		return
	}

	respondJSON(w, http.StatusOK, ordem)
}

// Advance godoc
// @Summary Advance order status
// @Description Moves the order to another active, non-cancellation status and appends a history entry.
// @Description Moving to a final status stamps dataFinalizacao.
// @Tags Ordens
// @Accept json
// @Produce json
// @Param id path string true "Ordem ID" format(uuid)
// @Param request body domain.AdvanceStatusRequest true "Target status"
// @Success 200 {object} domain.OrdemDetalheDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id}/status [post]
func (h *OrdemHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}

	var req domain.AdvanceStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ordem, err := h.ordemService.Advance(r.Context(), id, req.StatusID)
	if err != nil {
		respondServiceError(w, h.logger, err, "advance ordem")
		return
	}

	respondJSON(w, http.StatusOK, ordem)
}

// Cancel godoc
// @Summary Cancel order
// @Description Moves the order to the company's cancellation status. Finalized orders cannot be cancelled.
// @Tags Ordens
// @Produce json
// @Param id path string true "Ordem ID" format(uuid)
// @Success 200 {object} domain.OrdemDetalheDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id}/cancel [post]
func (h *OrdemHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}

	ordem, err := h.ordemService.Cancel(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "cancel ordem")
		return
	}

	respondJSON(w, http.StatusOK, ordem)
}

// History godoc
// @Summary Order status history
// @Description Status ledger, oldest first, with status and actor names
// @Tags Ordens
// @Produce json
// @Param id path string true "Ordem ID" format(uuid)
// @Success 200 {array} domain.HistoricoStatusDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id}/historico [get]
func (h *OrdemHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}

	history, err := h.ordemService.History(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get ordem history")
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// AddItem godoc
// @Summary Add item
// @Description Adds a service or product line and recomputes the order total
// @Tags Ordens
// @Accept json
// @Produce json
// @Param id path string true "Ordem ID" format(uuid)
// @Param request body domain.OSItemRequest true "Item"
// @Success 201 {object} domain.OrdemDetalheDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id}/itens [post]
func (h *OrdemHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}

	var req domain.OSItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ordem, err := h.ordemService.AddItem(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add item")
		return
	}

	respondJSON(w, http.StatusCreated, ordem)
}

// UpdateItem godoc
// @Summary Update item
// @Tags Ordens
// @Accept json
// @Produce json
// @Param id path string true "Ordem ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Param request body domain.OSItemRequest true "Item"
// @Success 200 {object} domain.OrdemDetalheDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id}/itens/{itemId} [put]
func (h *OrdemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}
	itemID, ok := urlUUID(w, r, "itemId", "item")
	if !ok {
		return
	}

	var req domain.OSItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ordem, err := h.ordemService.UpdateItem(r.Context(), id, itemID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update item")
		return
	}

	respondJSON(w, http.StatusOK, ordem)
}

// RemoveItem godoc
// @Summary Remove item
// @Tags Ordens
// @Produce json
// @Param id path string true "Ordem ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Success 200 {object} domain.OrdemDetalheDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id}/itens/{itemId} [delete]
func (h *OrdemHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}
	itemID, ok := urlUUID(w, r, "itemId", "item")
	if !ok {
		return
	}

	ordem, err := h.ordemService.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		respondServiceError(w, h.logger, err, "remove item")
		return
	}

	respondJSON(w, http.StatusOK, ordem)
}

// AddPagamento godoc
// @Summary Record payment
// @Description Payments may be recorded on any order that is not cancelled
// @Tags Ordens
// @Accept json
// @Produce json
// @Param id path string true "Ordem ID" format(uuid)
// @Param request body domain.PagamentoRequest true "Payment"
// @Success 201 {object} domain.OrdemDetalheDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id}/pagamentos [post]
func (h *OrdemHandler) AddPagamento(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}

	var req domain.PagamentoRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ordem, err := h.ordemService.AddPagamento(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add pagamento")
		return
	}

	respondJSON(w, http.StatusCreated, ordem)
}

// RemovePagamento godoc
// @Summary Remove payment
// @Tags Ordens
// @Produce json
// @Param id path string true "Ordem ID" format(uuid)
// @Param pagamentoId path string true "Pagamento ID" format(uuid)
// @Success 200 {object} domain.OrdemDetalheDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id}/pagamentos/{pagamentoId} [delete]
func (h *OrdemHandler) RemovePagamento(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}
	pagamentoID, ok := urlUUID(w, r, "pagamentoId", "pagamento")
	if !ok {
		return
	}

	ordem, err := h.ordemService.RemovePagamento(r.Context(), id, pagamentoID)
	if err != nil {
		respondServiceError(w, h.logger, err, "remove pagamento")
		return
	}

	respondJSON(w, http.StatusOK, ordem)
}

// Print godoc
// @Summary Print order
// @Description Renders the order as PDF. completa has every section plus a signature line,
// @Description resumida fits the workshop ticket and recibo is the payment receipt.
// @Tags Ordens
// @Produce application/pdf
// @Param id path string true "Ordem ID" format(uuid)
// @Param layout query string false "Layout" Enums(completa, resumida, recibo) default(completa)
// @Param copias query int false "Number of copies (1-3)" default(1)
// @Success 200 {file} file
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /ordens/{id}/print [get]
func (h *OrdemHandler) Print(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "ordem")
	if !ok {
		return
	}

	copias := 1
	if raw := r.URL.Query().Get("copias"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "copias must be a number")
			return
		}
		copias = n
	}
	layout := r.URL.Query().Get("layout")

	out, filename, err := h.printService.Print(r.Context(), id, layout, copias)
	if err != nil {
		respondServiceError(w, h.logger, err, "print ordem")
		return
	}

	// Failure is logged by the audit service; the document is still served.
	_ = h.auditService.LogPrint(r.Context(), r, id, layout, copias)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
