package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/estofaria/os-api/docs"
	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/database"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/http/handler"
	"github.com/estofaria/os-api/internal/http/middleware"
	"github.com/estofaria/os-api/internal/http/router"
	"github.com/estofaria/os-api/internal/jobs"
	"github.com/estofaria/os-api/internal/logger"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/estofaria/os-api/internal/service"
	"github.com/estofaria/os-api/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// jobTimeout bounds a single run of any background job
const jobTimeout = 10 * time.Minute

// @title Estofaria OS API
// @version 1.0
// @description Multi-tenant service order API for upholstery shops: clients, orders, status flow, catalog and reports
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email suporte@estofaria.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations, combined with X-Company-ID
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "os-api-staging.estofaria.app"
	case "production":
		docs.SwaggerInfo.Host = "api.estofaria.app"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In development secrets come from the environment,
	// in staging/production from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	reportStorage, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Repositories
	companyRepo := repository.NewCompanyRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	ordemRepo := repository.NewOrdemServicoRepository(db)
	statusRepo := repository.NewStatusConfigRepository(db)
	campoRepo := repository.NewCampoOSRepository(db)
	numeracaoRepo := repository.NewNumeracaoRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	categoriaRepo := repository.NewCatalogRepository[domain.Categoria](db)
	servicoRepo := repository.NewCatalogRepository[domain.Servico](db)
	produtoRepo := repository.NewCatalogRepository[domain.Produto](db)

	// Services
	auditLogService := service.NewAuditLogService(auditLogRepo, log)
	ordemService := service.NewOrdemService(db, service.NewOrdemRepositories(db), cfg.Numbering, service.NewOrdemMetrics(registry), log)
	printService := service.NewPrintService(ordemService, companyRepo, cfg.Report, log)
	reportService := service.NewReportService(ordemRepo, statusRepo, profileRepo, cfg.Report, log)
	clienteService := service.NewClienteService(clienteRepo, ordemRepo, log)
	statusService := service.NewStatusConfigService(db, statusRepo, log)
	campoService := service.NewCampoService(campoRepo, log)
	catalogService := service.NewCatalogService(categoriaRepo, servicoRepo, produtoRepo, log)
	numeracaoService := service.NewNumeracaoService(numeracaoRepo, cfg.Numbering, log)
	profileService := service.NewProfileService(db, profileRepo, companyRepo, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, profileRepo, companyRepo, log)
	companyFilterMiddleware := middleware.NewCompanyFilterMiddleware(log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	handlers := router.Handlers{
		Account:   handler.NewAccountHandler(profileService, log),
		Audit:     handler.NewAuditHandler(auditLogService, log),
		Campo:     handler.NewCampoHandler(campoService, log),
		Catalog:   handler.NewCatalogHandler(catalogService, log),
		Cliente:   handler.NewClienteHandler(clienteService, log),
		Numeracao: handler.NewNumeracaoHandler(numeracaoService, log),
		Ordem:     handler.NewOrdemHandler(ordemService, printService, auditLogService, log),
		Report:    handler.NewReportHandler(reportService, auditLogService, log),
		Status:    handler.NewStatusHandler(statusService, log),
	}

	rt := router.NewRouter(
		cfg,
		log,
		db,
		registry,
		httpMetrics,
		authMiddleware,
		companyFilterMiddleware,
		rateLimiter,
		auditMiddleware,
		handlers,
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		archive := jobs.NewReportArchiveJob(companyRepo, reportService, reportStorage, cfg.Report.Location(), log, jobTimeout)
		sweep := jobs.NewOverdueSweepJob(companyRepo, reportService, registry, log, jobTimeout)
		cleanup := jobs.NewAuditCleanupJob(auditLogService, cfg.Jobs.AuditRetentionDays, log, jobTimeout)

		for _, j := range []struct {
			name string
			expr string
			run  func()
		}{
			{jobs.ReportArchiveJobName, cfg.Jobs.ReportArchiveSchedule, archive.Run},
			{jobs.OverdueSweepJobName, cfg.Jobs.OverdueSweepSchedule, sweep.Run},
			{jobs.AuditCleanupJobName, cfg.Jobs.AuditCleanupSchedule, cleanup.Run},
		} {
			if j.expr == "" {
				continue
			}
			if err := scheduler.AddJob(j.name, j.expr, j.run); err != nil {
				return fmt.Errorf("failed to register job %s: %w", j.name, err)
			}
		}

		scheduler.Start()
		log.Info("Scheduler started", zap.Strings("jobs", scheduler.JobNames()))
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if scheduler != nil {
			if err := scheduler.Stop(ctx); err != nil {
				log.Warn("Scheduler did not stop in time", zap.Error(err))
			} else {
				log.Info("Scheduler stopped")
			}
		}

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Flush queued audit entries after the last request has finished
		auditMiddleware.Close()

		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("Error closing database connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
