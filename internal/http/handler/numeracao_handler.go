package handler

import (
	"net/http"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/service"
	"go.uber.org/zap"
)

type NumeracaoHandler struct {
	numeracaoService *service.NumeracaoService
	logger           *zap.Logger
}

func NewNumeracaoHandler(numeracaoService *service.NumeracaoService, logger *zap.Logger) *NumeracaoHandler {
	return &NumeracaoHandler{
		numeracaoService: numeracaoService,
		logger:           logger,
	}
}

// Get godoc
// @Summary Get order numbering
// @Description Prefix, next number and an example of the next order number
// @Tags Numeracao
// @Produce json
// @Success 200 {object} domain.NumeracaoDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /numeracao [get]
func (h *NumeracaoHandler) Get(w http.ResponseWriter, r *http.Request) {
	numeracao, err := h.numeracaoService.Get(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get numeracao")
		return
	}
	respondJSON(w, http.StatusOK, numeracao)
}

// Update godoc
// @Summary Update order numbering
// @Description The next number can move forward but never back below a number already issued
// @Tags Numeracao
// @Accept json
// @Produce json
// @Param request body domain.UpdateNumeracaoRequest true "Numbering"
// @Success 200 {object} domain.NumeracaoDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /numeracao [put]
func (h *NumeracaoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateNumeracaoRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	numeracao, err := h.numeracaoService.Update(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update numeracao")
		return
	}
	respondJSON(w, http.StatusOK, numeracao)
}
