package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditConfig holds configuration for audit middleware
type AuditConfig struct {
	// SkipPaths contains path prefixes that are never audited
	SkipPaths []string
	// QueueSize bounds the number of pending entries; extra entries are dropped and logged
	QueueSize int
	// Workers is the number of goroutines writing entries
	Workers int
}

// DefaultAuditConfig returns default audit configuration
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/swagger",
		},
		QueueSize: 256,
		Workers:   2,
	}
}

// entityTypes maps route segments to audited entity names
var entityTypes = map[string]string{
	"clientes":   "Cliente",
	"ordens":     "OrdemServico",
	"status":     "StatusConfig",
	"campos":     "CampoOS",
	"servicos":   "Servico",
	"produtos":   "Produto",
	"categorias": "Categoria",
	"numeracao":  "NumeracaoOS",
	"profiles":   "Profile",
}

type auditJob struct {
	r     *http.Request
	entry service.LogEntry
}

// AuditMiddleware records successful mutating requests. Entries are written by a
// small worker pool so the response is never held up by the audit insert.
type AuditMiddleware struct {
	auditService *service.AuditLogService
	config       *AuditConfig
	logger       *zap.Logger

	queue     chan auditJob
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewAuditMiddleware creates a new audit middleware and starts its workers.
// Call Close on shutdown to flush pending entries.
func NewAuditMiddleware(auditService *service.AuditLogService, config *AuditConfig, logger *zap.Logger) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	m := &AuditMiddleware{
		auditService: auditService,
		config:       config,
		logger:       logger,
		queue:        make(chan auditJob, config.QueueSize),
	}
	for i := 0; i < config.Workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

func (m *AuditMiddleware) worker() {
	defer m.wg.Done()
	for job := range m.queue {
		if err := m.auditService.Log(job.r.Context(), job.r, job.entry); err != nil {
			m.logger.Warn("failed to create audit log entry",
				zap.String("path", job.r.URL.Path),
				zap.String("method", job.r.Method),
				zap.Error(err))
		}
	}
}

// Close stops accepting entries and waits for the queue to drain
func (m *AuditMiddleware) Close() {
	m.closeOnce.Do(func() { close(m.queue) })
	m.wg.Wait()
}

// Audit returns middleware that logs modifications to the audit log
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.shouldAudit(r) {
			next.ServeHTTP(w, r)
			return
		}

		var requestBody []byte
		if r.Body != nil && r.Method != http.MethodDelete {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		rw := wrapResponseWriter(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode < 200 || rw.statusCode >= 300 {
			return
		}
		m.enqueue(r, rw.statusCode, requestBody)
	})
}

func (m *AuditMiddleware) enqueue(r *http.Request, statusCode int, requestBody []byte) {
	entityType, entityID, nested := extractEntityInfo(r)
	job := auditJob{
		// The request context ends with the response; keep its values only.
		r: r.Clone(context.WithoutCancel(r.Context())),
		entry: service.LogEntry{
			Action:     methodToAction(r.Method, entityID != nil, nested),
			EntityType: entityType,
			EntityID:   entityID,
			StatusCode: statusCode,
			Values:     service.SanitizeAuditBody(requestBody),
		},
	}

	defer func() {
		// Close raced with a late request
		if recover() != nil {
			m.logger.Warn("audit queue closed, entry dropped", zap.String("path", r.URL.Path))
		}
	}()
	select {
	case m.queue <- job:
	default:
		m.logger.Warn("audit queue full, entry dropped",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method))
	}
}

func (m *AuditMiddleware) shouldAudit(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return false
	}
	for _, skipPath := range m.config.SkipPaths {
		if strings.HasPrefix(r.URL.Path, skipPath) {
			return false
		}
	}
	return true
}

// methodToAction converts HTTP method to audit action. Anything routed below an
// entity id (status change, items, payments) is an update of that entity.
func methodToAction(method string, hasID, nested bool) domain.AuditAction {
	switch {
	case nested:
		return domain.AuditActionUpdate
	case method == http.MethodPost && !hasID:
		return domain.AuditActionCreate
	case method == http.MethodDelete:
		return domain.AuditActionDelete
	default:
		return domain.AuditActionUpdate
	}
}

// extractEntityInfo resolves the audited entity from the chi route pattern and its id param.
// nested reports whether the route continues past the {id} segment.
func extractEntityInfo(r *http.Request) (entityType string, entityID *uuid.UUID, nested bool) {
	path := r.URL.Path
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			path = pattern
		}
		if id, err := uuid.Parse(routeCtx.URLParam("id")); err == nil {
			entityID = &id
		}
	}
	nested = strings.Contains(path, "{id}/")

	entityType = "Unknown"
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if t, ok := entityTypes[part]; ok {
			entityType = t
			break
		}
	}
	return entityType, entityID, nested
}
