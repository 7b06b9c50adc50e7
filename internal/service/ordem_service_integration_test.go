//go:build integration

package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/database"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/estofaria/os-api/internal/service"
	"github.com/estofaria/os-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresIntegrationSuite runs the order service against a real PostgreSQL
// with the goose schema, where row locks and partial indexes behave as in production
type PostgresIntegrationSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
}

func TestPostgresIntegration(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("os_test"),
		postgres.WithUsername("os"),
		postgres.WithPassword("os"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := database.Open(gormpostgres.Open(dsn), &config.DatabaseConfig{
		MaxOpenConns: 20,
		MaxIdleConns: 5,
		LogLevel:     "silent",
	}, zap.NewNop())
	s.Require().NoError(err)
	s.db = db

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	s.Require().NoError(goose.SetDialect("postgres"))
	s.Require().NoError(goose.UpContext(ctx, sqlDB, "../../migrations"))
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *PostgresIntegrationSuite) newService() *service.OrdemService {
	numbering := config.NumberingConfig{PadWidth: 4, DefaultPrefix: "OS-"}
	return service.NewOrdemService(s.db, service.NewOrdemRepositories(s.db), numbering,
		service.NewOrdemMetrics(prometheus.NewRegistry()), zap.NewNop())
}

func (s *PostgresIntegrationSuite) TestConcurrentCreateIssuesUniqueNumbers() {
	t := s.T()
	tn := testutil.CreateTenant(t, s.db, "Estofados Concorrentes")
	cliente := testutil.CreateCliente(t, s.db, tn, "Maria Souza", "529.982.247-25")
	svc := s.newService()

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numeros []string
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ordem, err := svc.Create(tn.Context(), &domain.CreateOrdemRequest{
				ClienteID:    cliente.ID,
				DataPrevista: "2026-12-01",
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numeros = append(numeros, ordem.NumeroOS)
		}()
	}
	wg.Wait()

	s.Require().Empty(errs)
	sort.Strings(numeros)
	expected := make([]string, workers)
	for i := range expected {
		expected[i] = fmt.Sprintf("OS-%04d", i+1)
	}
	s.Equal(expected, numeros)
}

func (s *PostgresIntegrationSuite) TestConcurrentDemotionsKeepOneAdmin() {
	t := s.T()
	tn := testutil.CreateTenant(t, s.db, "Estofados Administrados")
	segundo := testutil.CreateProfile(t, s.db, tn, "Segundo Admin", domain.RoleAdmin)
	svc := service.NewProfileService(s.db, repository.NewProfileRepository(s.db), repository.NewCompanyRepository(s.db), zap.NewNop())

	operador := domain.RoleOperador
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, id := range []uuid.UUID{tn.Admin.ID, segundo.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, results[i] = svc.UpdateAccess(tn.Context(), id, &domain.UpdateProfileRequest{Role: &operador})
		}(i, id)
	}
	wg.Wait()

	var ok, blocked int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrCannotRemoveLastAdmin):
			blocked++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(1, blocked)

	var admins int64
	s.Require().NoError(s.db.Model(&domain.Profile{}).
		Where("company_id = ? AND role = ? AND ativo = ?", tn.Company.ID, domain.RoleAdmin, true).
		Count(&admins).Error)
	s.EqualValues(1, admins)
}

func (s *PostgresIntegrationSuite) TestSchemaRejectsSecondCancellationStatus() {
	tn := testutil.CreateTenant(s.T(), s.db, "Estofados Unicos")

	err := s.db.Create(&domain.StatusConfig{
		CompanyID:      tn.Company.ID,
		Nome:           "Desistência",
		Ordem:          9,
		Ativo:          true,
		IsCancelamento: true,
	}).Error
	s.Error(err)
}

func (s *PostgresIntegrationSuite) TestTenantsNumberIndependently() {
	t := s.T()
	svc := s.newService()

	for _, nome := range []string{"Estofados Norte", "Estofados Sul"} {
		tn := testutil.CreateTenant(t, s.db, nome)
		cliente := testutil.CreateCliente(t, s.db, tn, "João Lima", "111.444.777-35")

		ordem, err := svc.Create(tn.Context(), &domain.CreateOrdemRequest{
			ClienteID:    cliente.ID,
			DataPrevista: "2026-12-01",
		})
		s.Require().NoError(err)
		s.Equal("OS-0001", ordem.NumeroOS)
	}
}
