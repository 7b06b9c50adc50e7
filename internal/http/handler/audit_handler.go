package handler

import (
	"net/http"
	"time"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/service"
	"go.uber.org/zap"
)

// AuditHandler handles audit log related HTTP requests
type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// List godoc
// @Summary List audit logs
// @Description Returns a paginated list of the company's audit log entries with optional filters
// @Tags Audit
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param userId query string false "Filter by user ID"
// @Param action query string false "Filter by action type" Enums(create, update, delete, export, print)
// @Param entityType query string false "Filter by entity type"
// @Param entityId query string false "Filter by entity ID"
// @Param startTime query string false "Filter by start time (RFC3339)"
// @Param endTime query string false "Filter by end time (RFC3339)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.AuditLogDTO}
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	pageSize := parseIntQuery(r, "pageSize", 20)
	if pageSize > 100 {
		pageSize = 100
	}

	params := service.AuditLogQueryParams{
		EntityType: r.URL.Query().Get("entityType"),
		Page:       parseIntQuery(r, "page", 1),
		PageSize:   pageSize,
	}

	var err error
	if params.UserID, err = queryUUID(r, "userId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if params.EntityID, err = queryUUID(r, "entityId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if actionStr := r.URL.Query().Get("action"); actionStr != "" {
		action := domain.AuditAction(actionStr)
		params.Action = &action
	}

	// Parse time range filters
	if startStr := r.URL.Query().Get("startTime"); startStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startStr); err == nil {
			params.StartTime = &startTime
		}
	}
	if endStr := r.URL.Query().Get("endTime"); endStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endStr); err == nil {
			params.EndTime = &endTime
		}
	}

	result, err := h.auditService.List(r.Context(), params)
	if err != nil {
		respondServiceError(w, h.logger, err, "list audit logs")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
