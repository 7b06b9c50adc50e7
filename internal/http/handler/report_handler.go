package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/service"
	"go.uber.org/zap"
)

// ReportHandler serves the dashboard, the delivery agenda and the sales report
type ReportHandler struct {
	reportService *service.ReportService
	auditService  *service.AuditLogService
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, auditService *service.AuditLogService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		auditService:  auditService,
		logger:        logger,
	}
}

// Dashboard godoc
// @Summary Dashboard
// @Description Today's figures in the configured timezone: orders due, in production, finalized, overdue,
// @Description today's revenue, per-status counts and the latest orders
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardDTO
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard [get]
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.reportService.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "load dashboard")
		return
	}
	respondJSON(w, http.StatusOK, dash)
}

// Agenda godoc
// @Summary Delivery agenda
// @Description Orders expected on a day, cancelled ones excluded
// @Tags Dashboard
// @Produce json
// @Param data query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.AgendaDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /agenda [get]
func (h *ReportHandler) Agenda(w http.ResponseWriter, r *http.Request) {
	agenda, err := h.reportService.Agenda(r.Context(), r.URL.Query().Get("data"))
	if err != nil {
		respondServiceError(w, h.logger, err, "load agenda")
		return
	}
	respondJSON(w, http.StatusOK, agenda)
}

// reportFilter reads the shared report query parameters
func reportFilter(w http.ResponseWriter, r *http.Request) (domain.ReportFilter, bool) {
	var f domain.ReportFilter
	var err error
	if f.Inicio, err = queryTime(r, "inicio"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return f, false
	}
	if f.Fim, err = queryTime(r, "fim"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return f, false
	}
	if f.VendedorID, err = queryUUID(r, "vendedorId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return f, false
	}
	if f.StatusID, err = queryUUID(r, "statusId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return f, false
	}
	return f, true
}

// Report godoc
// @Summary Sales report
// @Description Orders opened in the range with revenue, count, average ticket and average lead time.
// @Description Cancelled orders are counted but excluded from revenue.
// @Tags Relatorios
// @Produce json
// @Param inicio query string false "Opened on or after (YYYY-MM-DD)"
// @Param fim query string false "Opened on or before (YYYY-MM-DD)"
// @Param vendedorId query string false "Filter by vendedor" format(uuid)
// @Param statusId query string false "Filter by status" format(uuid)
// @Success 200 {object} domain.ReportDTO
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /relatorios [get]
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	f, ok := reportFilter(w, r)
	if !ok {
		return
	}

	report, err := h.reportService.Report(r.Context(), f)
	if err != nil {
		respondServiceError(w, h.logger, err, "build report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ExportCSV godoc
// @Summary Export report as CSV
// @Tags Relatorios
// @Produce text/csv
// @Param inicio query string false "Opened on or after (YYYY-MM-DD)"
// @Param fim query string false "Opened on or before (YYYY-MM-DD)"
// @Param vendedorId query string false "Filter by vendedor" format(uuid)
// @Param statusId query string false "Filter by status" format(uuid)
// @Success 200 {file} file
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /relatorios/export [get]
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	f, ok := reportFilter(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	count, err := h.reportService.WriteCSV(r.Context(), &buf, f)
	if err != nil {
		respondServiceError(w, h.logger, err, "export report")
		return
	}

	_ = h.auditService.LogExport(r.Context(), r, "OrdemServico", count, "csv")

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio-`+h.reportService.Today()+`.csv"`)
	w.Header().Set("X-Total-Count", strconv.Itoa(count))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
