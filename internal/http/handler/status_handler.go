package handler

import (
	"net/http"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/service"
	"go.uber.org/zap"
)

// StatusHandler serves the company's configurable status flow
type StatusHandler struct {
	statusService *service.StatusConfigService
	logger        *zap.Logger
}

func NewStatusHandler(statusService *service.StatusConfigService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		logger:        logger,
	}
}

// List godoc
// @Summary List statuses
// @Description All statuses of the company in flow order, active and inactive
// @Tags Status
// @Produce json
// @Success 200 {array} domain.StatusConfigDTO
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /status [get]
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statusService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list statuses")
		return
	}
	respondJSON(w, http.StatusOK, statuses)
}

// Create godoc
// @Summary Create status
// @Description Appends a status to the end of the flow. Only one active cancellation status is allowed.
// @Tags Status
// @Accept json
// @Produce json
// @Param request body domain.CreateStatusRequest true "Status data"
// @Success 201 {object} domain.StatusConfigDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /status [post]
func (h *StatusHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	status, err := h.statusService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create status")
		return
	}

	w.Header().Set("Location", "/api/v1/status/"+status.ID.String())
	respondJSON(w, http.StatusCreated, status)
}

// Update godoc
// @Summary Update status
// @Tags Status
// @Accept json
// @Produce json
// @Param id path string true "Status ID" format(uuid)
// @Param request body domain.UpdateStatusRequest true "Status data"
// @Success 200 {object} domain.StatusConfigDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /status/{id} [put]
func (h *StatusHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "status")
	if !ok {
		return
	}

	var req domain.UpdateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	status, err := h.statusService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// Toggle godoc
// @Summary Toggle status active flag
// @Tags Status
// @Produce json
// @Param id path string true "Status ID" format(uuid)
// @Success 200 {object} domain.StatusConfigDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /status/{id}/toggle [post]
func (h *StatusHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "status")
	if !ok {
		return
	}

	status, err := h.statusService.ToggleActive(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "toggle status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// Reorder godoc
// @Summary Reorder statuses
// @Description Sets each status's position to its index in the given list
// @Tags Status
// @Accept json
// @Produce json
// @Param request body domain.ReorderStatusesRequest true "Status ids in flow order"
// @Success 200 {array} domain.StatusConfigDTO
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /status/reorder [put]
func (h *StatusHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req domain.ReorderStatusesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	statuses, err := h.statusService.Reorder(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err, "reorder statuses")
		return
	}

	respondJSON(w, http.StatusOK, statuses)
}

// Delete godoc
// @Summary Delete status
// @Description Statuses referenced by orders or history cannot be deleted; deactivate them instead
// @Tags Status
// @Param id path string true "Status ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /status/{id} [delete]
func (h *StatusHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "status")
	if !ok {
		return
	}

	if err := h.statusService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete status")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SeedDefaults godoc
// @Summary Seed default status flow
// @Description Creates the default flow (Criada, Em Produção, Finalizada, Cancelada). Does nothing when the company already has statuses.
// @Tags Status
// @Success 204
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /status/seed [post]
func (h *StatusHandler) SeedDefaults(w http.ResponseWriter, r *http.Request) {
	if err := h.statusService.SeedDefaults(r.Context()); err != nil {
		respondServiceError(w, h.logger, err, "seed statuses")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
