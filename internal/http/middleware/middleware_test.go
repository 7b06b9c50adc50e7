package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		ContentTypeNosniff:    true,
		FrameOptions:          "DENY",
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
	h := middleware.SecurityHeaders(cfg)(okHandler)

	t.Run("api", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ordens", nil))

		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("swagger skips csp", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))

		assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
		assert.Empty(t, rec.Header().Get("Cache-Control"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})
}

func TestCORS(t *testing.T) {
	preflight := func(h http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/ordens", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "X-Company-ID")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	base := config.CORSConfig{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept"},
	}

	t.Run("explicit origin allowed with required headers", func(t *testing.T) {
		cfg := base
		cfg.AllowedOrigins = []string{"https://app.estofaria.test"}
		h := middleware.CORS(&cfg, "production", zap.NewNop())(okHandler)

		rec := preflight(h, "https://app.estofaria.test")
		assert.Equal(t, "https://app.estofaria.test", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "x-company-id")

		rec = preflight(h, "https://evil.test")
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("production without origins denies", func(t *testing.T) {
		cfg := base
		h := middleware.CORS(&cfg, "production", zap.NewNop())(okHandler)
		rec := preflight(h, "https://app.estofaria.test")
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("development without origins allows", func(t *testing.T) {
		cfg := base
		h := middleware.CORS(&cfg, "development", zap.NewNop())(okHandler)
		rec := preflight(h, "http://localhost:5173")
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func withUser(r *http.Request, u *auth.UserContext) *http.Request {
	return r.WithContext(auth.WithUserContext(r.Context(), u))
}

func TestCompanyFilter(t *testing.T) {
	companyID := uuid.New()
	user := &auth.UserContext{UserID: uuid.New(), Role: domain.RoleOperador, CompanyID: companyID}

	var seen *uuid.UUID
	h := middleware.NewCompanyFilterMiddleware(zap.NewNop()).Filter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetEffectiveCompanyFilter(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("pins the user's company", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/ordens", nil), user))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, companyID, *seen)
	})

	t.Run("same company_id is accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/ordens?company_id="+companyID.String(), nil), user))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other company_id is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/ordens?company_id="+uuid.NewString(), nil), user))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), domain.ErrorTypeForbidden)
	})

	t.Run("no user passes through without a tenant", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})
}

func TestRateLimiter(t *testing.T) {
	cfg := &config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     2,
		RequestsPerMinuteAuth: 3,
		WhitelistPaths:        []string{"/health/*"},
	}
	rl := middleware.NewRateLimiter(cfg, zap.NewNop())

	t.Run("by ip", func(t *testing.T) {
		h := rl.LimitByIP(okHandler)
		codes := make([]int, 0, 3)
		var last *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ordens", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			last = httptest.NewRecorder()
			h.ServeHTTP(last, req)
			codes = append(codes, last.Code)
		}
		assert.Equal(t, []int{200, 200, 429}, codes)
		assert.Equal(t, "60", last.Header().Get("Retry-After"))
		assert.Contains(t, last.Body.String(), `"detail":"Too many requests. Please try again shortly."`)
	})

	t.Run("whitelisted path", func(t *testing.T) {
		h := rl.LimitByIP(okHandler)
		for i := 0; i < 5; i++ {
			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			req.RemoteAddr = "10.0.0.2:5000"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("by caller keeps users apart", func(t *testing.T) {
		h := rl.LimitByCaller(okHandler)
		ana := &auth.UserContext{UserID: uuid.New(), CompanyID: uuid.New()}
		beto := &auth.UserContext{UserID: uuid.New(), CompanyID: ana.CompanyID}

		last := 0
		for i := 0; i < 4; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/ordens", nil), ana))
			last = rec.Code
		}
		assert.Equal(t, http.StatusTooManyRequests, last)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/ordens", nil), beto))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disabled is a no-op", func(t *testing.T) {
		off := middleware.NewRateLimiter(&config.RateLimitConfig{RequestsPerMinute: 1}, zap.NewNop())
		h := off.LimitByIP(okHandler)
		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestLogging_RequestID(t *testing.T) {
	var seen string
	h := middleware.Logging(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ordens", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	h := middleware.Recovery(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrorTypeInternal)
}

func TestHTTPMetrics_RoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/api/v1/ordens/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ordens/"+uuid.NewString(), nil))
	}

	expected := `
# HELP os_http_requests_total HTTP requests by method, route and status code.
# TYPE os_http_requests_total counter
os_http_requests_total{method="GET",route="/api/v1/ordens/{id}",status="404"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "os_http_requests_total"))
}
