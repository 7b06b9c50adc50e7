package router

import (
	"encoding/json"
	"net/http"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/database"
	"github.com/estofaria/os-api/internal/http/handler"
	"github.com/estofaria/os-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/estofaria/os-api/docs" // Import generated swagger docs
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Account   *handler.AccountHandler
	Audit     *handler.AuditHandler
	Campo     *handler.CampoHandler
	Catalog   *handler.CatalogHandler
	Cliente   *handler.ClienteHandler
	Numeracao *handler.NumeracaoHandler
	Ordem     *handler.OrdemHandler
	Report    *handler.ReportHandler
	Status    *handler.StatusHandler
}

type Router struct {
	cfg                     *config.Config
	logger                  *zap.Logger
	db                      *gorm.DB
	gatherer                prometheus.Gatherer
	httpMetrics             *middleware.HTTPMetrics
	authMiddleware          *auth.Middleware
	companyFilterMiddleware *middleware.CompanyFilterMiddleware
	rateLimiter             *middleware.RateLimiter
	auditMiddleware         *middleware.AuditMiddleware
	h                       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	gatherer prometheus.Gatherer,
	httpMetrics *middleware.HTTPMetrics,
	authMiddleware *auth.Middleware,
	companyFilterMiddleware *middleware.CompanyFilterMiddleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:                     cfg,
		logger:                  logger,
		db:                      db,
		gatherer:                gatherer,
		httpMetrics:             httpMetrics,
		authMiddleware:          authMiddleware,
		companyFilterMiddleware: companyFilterMiddleware,
		rateLimiter:             rateLimiter,
		auditMiddleware:         auditMiddleware,
		h:                       handlers,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(rt.httpMetrics.Instrument)
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health check with pool stats
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Readiness probe
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]interface{}{}
		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]string{"status": "unhealthy", "error": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = map[string]string{"status": "healthy"}
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}
		writeJSON(w, status, map[string]interface{}{
			"status":  overall,
			"version": rt.cfg.App.Version,
			"checks":  checks,
		})
	})

	if rt.cfg.Server.EnableMetrics {
		r.Handle("/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))
	}

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := rt.h
	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimw.Timeout(timeout))
		}
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.companyFilterMiddleware.Filter)
		r.Use(rt.rateLimiter.LimitByCaller)
		r.Use(rt.auditMiddleware.Audit)

		r.Get("/me", h.Account.Me)

		r.Route("/clientes", func(r chi.Router) {
			r.Get("/", h.Cliente.List)
			r.Post("/", h.Cliente.Create)
			r.Get("/lookup", h.Cliente.Lookup)
			r.Get("/{id}", h.Cliente.GetByID)
			r.Put("/{id}", h.Cliente.Update)
			r.With(rt.authMiddleware.RequireAdminOrGerente).Delete("/{id}", h.Cliente.Delete)
		})

		r.Route("/ordens", func(r chi.Router) {
			r.Get("/", h.Ordem.List)
			r.Post("/", h.Ordem.Create)
			r.Get("/{id}", h.Ordem.GetByID)
			r.Patch("/{id}", h.Ordem.Update)
			r.Get("/{id}/historico", h.Ordem.History)
			r.Get("/{id}/print", h.Ordem.Print)

			// Lifecycle
			r.Post("/{id}/status", h.Ordem.Advance)
			r.Post("/{id}/cancel", h.Ordem.Cancel)

			// Sub-resources
			r.Post("/{id}/itens", h.Ordem.AddItem)
			r.Put("/{id}/itens/{itemId}", h.Ordem.UpdateItem)
			r.Delete("/{id}/itens/{itemId}", h.Ordem.RemoveItem)
			r.Post("/{id}/pagamentos", h.Ordem.AddPagamento)
			r.With(rt.authMiddleware.RequireAdminOrGerente).Delete("/{id}/pagamentos/{pagamentoId}", h.Ordem.RemovePagamento)
		})

		// Dashboard & reports
		r.Get("/dashboard", h.Report.Dashboard)
		r.Get("/agenda", h.Report.Agenda)
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireAdminOrGerente)
			r.Get("/relatorios", h.Report.Report)
			r.Get("/relatorios/export", h.Report.ExportCSV)
		})

		// Configuration is readable by everyone, writable by admins
		admin := rt.authMiddleware.RequireAdmin

		r.Route("/status", func(r chi.Router) {
			r.Get("/", h.Status.List)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", h.Status.Create)
				r.Post("/seed", h.Status.SeedDefaults)
				r.Put("/reorder", h.Status.Reorder)
				r.Put("/{id}", h.Status.Update)
				r.Post("/{id}/toggle", h.Status.Toggle)
				r.Delete("/{id}", h.Status.Delete)
			})
		})

		r.Route("/campos", func(r chi.Router) {
			r.Get("/", h.Campo.List)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", h.Campo.Create)
				r.Put("/{id}", h.Campo.Update)
				r.Post("/{id}/toggle", h.Campo.Toggle)
				r.Delete("/{id}", h.Campo.Delete)
			})
		})

		r.Route("/categorias", func(r chi.Router) {
			r.Get("/", h.Catalog.ListCategorias)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", h.Catalog.CreateCategoria)
				r.Put("/{id}", h.Catalog.UpdateCategoria)
				r.Post("/{id}/toggle", h.Catalog.ToggleCategoria)
				r.Delete("/{id}", h.Catalog.DeleteCategoria)
			})
		})

		r.Route("/servicos", func(r chi.Router) {
			r.Get("/", h.Catalog.ListServicos)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", h.Catalog.CreateServico)
				r.Put("/{id}", h.Catalog.UpdateServico)
				r.Post("/{id}/toggle", h.Catalog.ToggleServico)
				r.Delete("/{id}", h.Catalog.DeleteServico)
			})
		})

		r.Route("/produtos", func(r chi.Router) {
			r.Get("/", h.Catalog.ListProdutos)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", h.Catalog.CreateProduto)
				r.Put("/{id}", h.Catalog.UpdateProduto)
				r.Post("/{id}/toggle", h.Catalog.ToggleProduto)
				r.Delete("/{id}", h.Catalog.DeleteProduto)
			})
		})

		r.Get("/numeracao", h.Numeracao.Get)
		r.With(admin).Put("/numeracao", h.Numeracao.Update)

		r.With(admin).Get("/profiles", h.Account.ListProfiles)
		r.With(admin).Patch("/profiles/{id}", h.Account.UpdateProfile)
		r.With(admin).Get("/audit", h.Audit.List)
	})

	return r
}
