package handler

import (
	"net/http"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/service"
	"go.uber.org/zap"
)

// CampoHandler serves the company's custom order fields
type CampoHandler struct {
	campoService *service.CampoService
	logger       *zap.Logger
}

func NewCampoHandler(campoService *service.CampoService, logger *zap.Logger) *CampoHandler {
	return &CampoHandler{
		campoService: campoService,
		logger:       logger,
	}
}

// List godoc
// @Summary List custom fields
// @Tags Campos
// @Produce json
// @Param ativos query bool false "Only active fields" default(false)
// @Success 200 {array} domain.CampoOSDTO
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /campos [get]
func (h *CampoHandler) List(w http.ResponseWriter, r *http.Request) {
	campos, err := h.campoService.List(r.Context(), parseBoolQuery(r, "ativos", false))
	if err != nil {
		respondServiceError(w, h.logger, err, "list campos")
		return
	}
	respondJSON(w, http.StatusOK, campos)
}

// Create godoc
// @Summary Create custom field
// @Description select fields need at least one option, given as a list or as comma separated text
// @Tags Campos
// @Accept json
// @Produce json
// @Param request body domain.CreateCampoRequest true "Field data"
// @Success 201 {object} domain.CampoOSDTO
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /campos [post]
func (h *CampoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCampoRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	campo, err := h.campoService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create campo")
		return
	}

	w.Header().Set("Location", "/api/v1/campos/"+campo.ID.String())
	respondJSON(w, http.StatusCreated, campo)
}

// Update godoc
// @Summary Update custom field
// @Tags Campos
// @Accept json
// @Produce json
// @Param id path string true "Campo ID" format(uuid)
// @Param request body domain.UpdateCampoRequest true "Field data"
// @Success 200 {object} domain.CampoOSDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /campos/{id} [put]
func (h *CampoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "campo")
	if !ok {
		return
	}

	var req domain.UpdateCampoRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	campo, err := h.campoService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update campo")
		return
	}

	respondJSON(w, http.StatusOK, campo)
}

// Toggle godoc
// @Summary Toggle custom field active flag
// @Tags Campos
// @Produce json
// @Param id path string true "Campo ID" format(uuid)
// @Success 200 {object} domain.CampoOSDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /campos/{id}/toggle [post]
func (h *CampoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "campo")
	if !ok {
		return
	}

	campo, err := h.campoService.ToggleActive(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "toggle campo")
		return
	}

	respondJSON(w, http.StatusOK, campo)
}

// Delete godoc
// @Summary Delete custom field
// @Tags Campos
// @Param id path string true "Campo ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /campos/{id} [delete]
func (h *CampoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "campo")
	if !ok {
		return
	}

	if err := h.campoService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete campo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
