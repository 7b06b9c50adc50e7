package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/http/handler"
	"github.com/estofaria/os-api/internal/http/middleware"
	"github.com/estofaria/os-api/internal/http/router"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/estofaria/os-api/internal/service"
	"github.com/estofaria/os-api/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const apiKey = "router-test-key"

func newTestServer(t *testing.T) (http.Handler, *testutil.Tenant) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Estofados Alpha")
	log := zap.NewNop()

	cfg := &config.Config{
		App:       config.AppConfig{Name: "os-api", Environment: "development", Version: "test"},
		JWT:       config.JWTConfig{Secret: "router-secret-with-enough-length"},
		ApiKey:    config.ApiKeyConfig{Value: apiKey},
		Server:    config.ServerConfig{RequestTimeout: 5, EnableSwagger: true, EnableMetrics: true},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 1000, RequestsPerMinuteAuth: 1000},
	}

	reg := prometheus.NewRegistry()
	profileRepo := repository.NewProfileRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db), log)
	auditMiddleware := middleware.NewAuditMiddleware(auditService, nil, log)
	t.Cleanup(auditMiddleware.Close)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		reg,
		middleware.NewHTTPMetrics(reg),
		auth.NewMiddleware(cfg, profileRepo, companyRepo, log),
		middleware.NewCompanyFilterMiddleware(log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		auditMiddleware,
		router.Handlers{
			Status: handler.NewStatusHandler(service.NewStatusConfigService(db, repository.NewStatusConfigRepository(db), log), log),
		},
	)
	return rt.Setup(), tn
}

func get(h http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(h, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = get(h, "/health/db", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec = get(h, "/health/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)
}

func TestRouter_APIRequiresAuthentication(t *testing.T) {
	h, tn := newTestServer(t)

	rec := get(h, "/api/v1/status", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(h, "/api/v1/status", map[string]string{"x-api-key": apiKey, "X-Company-ID": tn.Company.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&statuses))
	assert.Len(t, statuses, 4)
}

func TestRouter_MetricsUseRoutePatterns(t *testing.T) {
	h, tn := newTestServer(t)
	get(h, "/api/v1/status", map[string]string{"x-api-key": apiKey, "X-Company-ID": tn.Company.ID.String()})

	rec := get(h, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "os_http_requests_total")
	assert.Contains(t, body, `route="/api/v1/status`)
	assert.False(t, strings.Contains(body, tn.Company.ID.String()), "ids must not leak into labels")
}

func TestRouter_Swagger(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(h, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Estofaria OS API")
}
