package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/mapper"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxAuditBody caps the stored request body
const maxAuditBody = 8 << 10

// sensitiveAuditFields are dropped from stored request bodies
var sensitiveAuditFields = []string{"password", "secret", "token", "apiKey", "documento"}

// AuditLogService handles audit logging operations
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// LogEntry represents the input for creating an audit log entry
type LogEntry struct {
	Action     domain.AuditAction
	EntityType string
	EntityID   *uuid.UUID
	StatusCode int
	Values     interface{}
}

// Log creates an audit log entry from context and request
func (s *AuditLogService) Log(ctx context.Context, r *http.Request, entry LogEntry) error {
	auditLog := &domain.AuditLog{
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		StatusCode:  entry.StatusCode,
		PerformedAt: time.Now().UTC(),
	}

	if companyID, ok := auth.CompanyIDFromContext(ctx); ok {
		auditLog.CompanyID = &companyID
	}
	if userCtx, ok := auth.FromContext(ctx); ok && userCtx != nil {
		auditLog.UserID = userCtx.ActorID()
		auditLog.UserEmail = userCtx.Email
	}

	if r != nil {
		auditLog.Method = r.Method
		auditLog.Path = r.URL.Path
		auditLog.IPAddress = getClientIP(r)
		auditLog.UserAgent = truncate(r.UserAgent(), 500)
		auditLog.RequestID = r.Header.Get("X-Request-ID")
	}

	if entry.Values != nil {
		if body, err := json.Marshal(entry.Values); err == nil {
			auditLog.RequestBody = truncate(string(body), maxAuditBody)
		}
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.logger.Error("failed to create audit log",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType),
			zap.Error(err))
		return err
	}
	return nil
}

// LogExport logs a report export
func (s *AuditLogService) LogExport(ctx context.Context, r *http.Request, entityType string, count int, format string) error {
	return s.Log(ctx, r, LogEntry{
		Action:     domain.AuditActionExport,
		EntityType: entityType,
		StatusCode: http.StatusOK,
		Values: map[string]interface{}{
			"count":  count,
			"format": format,
		},
	})
}

// LogPrint logs an order printout
func (s *AuditLogService) LogPrint(ctx context.Context, r *http.Request, ordemID uuid.UUID, layout string, copias int) error {
	return s.Log(ctx, r, LogEntry{
		Action:     domain.AuditActionPrint,
		EntityType: "OrdemServico",
		EntityID:   &ordemID,
		StatusCode: http.StatusOK,
		Values: map[string]interface{}{
			"layout": layout,
			"copias": copias,
		},
	})
}

// AuditLogQueryParams represents query parameters for listing audit logs
type AuditLogQueryParams struct {
	UserID     *uuid.UUID
	Action     *domain.AuditAction
	EntityType string
	EntityID   *uuid.UUID
	StartTime  *time.Time
	EndTime    *time.Time
	Page       int
	PageSize   int
}

// List retrieves the tenant's audit logs with filters
func (s *AuditLogService) List(ctx context.Context, params AuditLogQueryParams) (*domain.PaginatedResponse, error) {
	filter := &repository.AuditLogFilter{
		UserID:     params.UserID,
		Action:     params.Action,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		StartTime:  params.StartTime,
		EndTime:    params.EndTime,
	}

	page, pageSize := repository.NormalizePage(params.Page, params.PageSize)
	logs, total, err := s.auditRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	dtos := make([]domain.AuditLogDTO, len(logs))
	for i := range logs {
		dtos[i] = mapper.ToAuditLogDTO(&logs[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// CleanupOldLogs removes logs older than the specified retention period
func (s *AuditLogService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	before := time.Now().AddDate(0, 0, -retentionDays)
	count, err := s.auditRepo.DeleteOlderThan(ctx, before)
	if err != nil {
		s.logger.Error("failed to cleanup old audit logs",
			zap.Int("retention_days", retentionDays),
			zap.Error(err))
		return 0, err
	}

	if count > 0 {
		s.logger.Info("cleaned up old audit logs",
			zap.Int64("deleted_count", count),
			zap.Int("retention_days", retentionDays))
	}
	return count, nil
}

// SanitizeAuditBody parses a JSON request body and drops sensitive fields.
// Returns nil when the body is not a JSON object.
func SanitizeAuditBody(body []byte) map[string]interface{} {
	if len(body) == 0 {
		return nil
	}
	var parsed map[string]interface{}
	if json.Unmarshal(body, &parsed) != nil {
		return nil
	}
	for _, f := range sensitiveAuditFields {
		delete(parsed, f)
	}
	return parsed
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// paginated wraps a page of DTOs in the shared response envelope
func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
