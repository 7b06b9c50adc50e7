package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/http/middleware"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/estofaria/os-api/internal/service"
	"github.com/estofaria/os-api/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuditMiddleware_RecordsSuccessfulWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	audit := middleware.NewAuditMiddleware(auditService, nil, zap.NewNop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			user, _ := auth.FromContext(tn.Context())
			ctx := auth.WithUserContext(req.Context(), user)
			ctx = auth.WithCompanyFilter(ctx, &auth.CompanyFilter{CompanyID: tn.Company.ID})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Use(audit.Audit)
	r.Post("/api/v1/clientes", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) })
	r.Post("/api/v1/ordens/{id}/status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Delete("/api/v1/status/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	r.Put("/api/v1/campos/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusConflict) })
	r.Get("/api/v1/ordens", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	ordemID, statusID := uuid.New(), uuid.New()
	send := func(method, path, body string) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))
	}
	send(http.MethodPost, "/api/v1/clientes", `{"nome":"Maria","documento":"52998224725"}`)
	send(http.MethodPost, "/api/v1/ordens/"+ordemID.String()+"/status", `{"statusId":"`+statusID.String()+`"}`)
	send(http.MethodDelete, "/api/v1/status/"+statusID.String(), "")
	send(http.MethodPut, "/api/v1/campos/"+uuid.NewString(), `{"nome":"x"}`)
	send(http.MethodGet, "/api/v1/ordens", "")

	audit.Close()

	var logs []domain.AuditLog
	require.NoError(t, db.Order("entity_type").Find(&logs).Error)
	require.Len(t, logs, 3, "failed and read-only requests are not audited")

	byType := map[string]domain.AuditLog{}
	for _, l := range logs {
		byType[l.EntityType] = l
		require.NotNil(t, l.CompanyID)
		assert.Equal(t, tn.Company.ID, *l.CompanyID)
	}

	cliente := byType["Cliente"]
	assert.Equal(t, domain.AuditActionCreate, cliente.Action)
	assert.Equal(t, http.StatusCreated, cliente.StatusCode)
	assert.Contains(t, cliente.RequestBody, "Maria")
	assert.NotContains(t, cliente.RequestBody, "52998224725", "documento is stripped from stored bodies")

	ordem := byType["OrdemServico"]
	assert.Equal(t, domain.AuditActionUpdate, ordem.Action)
	require.NotNil(t, ordem.EntityID)
	assert.Equal(t, ordemID, *ordem.EntityID)

	status := byType["StatusConfig"]
	assert.Equal(t, domain.AuditActionDelete, status.Action)
}

func TestAuditMiddleware_CloseIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	audit := middleware.NewAuditMiddleware(
		service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop()),
		&middleware.AuditConfig{QueueSize: 1, Workers: 1},
		zap.NewNop(),
	)
	audit.Close()
	assert.NotPanics(t, audit.Close)

	// Late requests after shutdown are dropped, not panicking the handler
	h := audit.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) }))
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/clientes", bytes.NewBufferString(`{}`)))
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}
