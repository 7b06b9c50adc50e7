package jobs_test

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/jobs"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/estofaria/os-api/internal/service"
	"github.com/estofaria/os-api/internal/storage"
	"github.com/estofaria/os-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var saoPaulo = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(err)
	}
	return loc
}()

func openedAt(t *testing.T, db *gorm.DB, o domain.OrdemServico, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&domain.OrdemServico{}).Where("id = ?", o.ID).Update("data_abertura", at).Error)
}

func readArchive(t *testing.T, store storage.Storage, key string) [][]string {
	t.Helper()
	rc, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	records, err := csv.NewReader(rc).ReadAll()
	require.NoError(t, err)
	return records
}

func TestReportArchiveJob_Archive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	alpha := testutil.CreateTenant(t, db, "Estofados Alpha")
	beta := testutil.CreateTenant(t, db, "Estofados Beta")
	inactive := testutil.CreateTenant(t, db, "Estofados Gama")
	require.NoError(t, db.Model(&inactive.Company).Update("ativo", false).Error)

	cliente := testutil.CreateCliente(t, db, alpha, "Maria Souza", "529.982.247-25")
	// 2026-03-10 21:30 in São Paulo is already the 11th in UTC
	lateEvening := testutil.CreateOrdem(t, db, alpha, cliente, alpha.Criada, "OS-0001", "100.00")
	openedAt(t, db, lateEvening, time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC))
	today := testutil.CreateOrdem(t, db, alpha, cliente, alpha.Criada, "OS-0002", "50.00")
	openedAt(t, db, today, time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC))

	reports := service.NewReportService(
		repository.NewOrdemServicoRepository(db),
		repository.NewStatusConfigRepository(db),
		repository.NewProfileRepository(db),
		config.ReportConfig{Timezone: "America/Sao_Paulo"},
		zap.NewNop(),
	)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	job := jobs.NewReportArchiveJob(repository.NewCompanyRepository(db), reports, store, saoPaulo, zap.NewNop(), time.Minute)
	job.SetClock(func() time.Time { return time.Date(2026, 3, 11, 13, 0, 0, 0, time.UTC) })

	written, err := job.Archive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	records := readArchive(t, store, jobs.ArchiveKey(alpha.Company.ID, "2026-03-10"))
	require.Len(t, records, 2, "header plus the order opened on the 10th local time")
	assert.Equal(t, "OS-0001", records[1][0])

	records = readArchive(t, store, jobs.ArchiveKey(beta.Company.ID, "2026-03-10"))
	assert.Len(t, records, 1, "tenants without orders still get a header-only file")

	ok, err := store.Exists(context.Background(), jobs.ArchiveKey(inactive.Company.ID, "2026-03-10"))
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("rerun skips archived days", func(t *testing.T) {
		written, err := job.Archive(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, written)
	})
}

func TestArchiveKey(t *testing.T) {
	id := uuid.MustParse("7d3f2a1e-0000-4000-8000-000000000001")
	assert.Equal(t, "reports/7d3f2a1e-0000-4000-8000-000000000001/2026-03-10.csv", jobs.ArchiveKey(id, "2026-03-10"))
}

type fakeCompanies struct {
	companies []domain.Company
	err       error
}

func (f *fakeCompanies) ListActive(context.Context) ([]domain.Company, error) {
	return f.companies, f.err
}

type failingReports struct{}

func (failingReports) WriteCSV(context.Context, io.Writer, domain.ReportFilter) (int, error) {
	return 0, errors.New("database is down")
}

func TestReportArchiveJob_CompanyFailureIsIsolated(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	companies := &fakeCompanies{companies: []domain.Company{{BaseModel: domain.BaseModel{ID: uuid.New()}}, {BaseModel: domain.BaseModel{ID: uuid.New()}}}}

	job := jobs.NewReportArchiveJob(companies, failingReports{}, store, time.UTC, zap.NewNop(), time.Minute)
	written, err := job.Archive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, written)

	companies.err = errors.New("no db")
	_, err = job.Archive(context.Background())
	assert.Error(t, err)
}

type fakeDashboards map[uuid.UUID]int

func (f fakeDashboards) Dashboard(ctx context.Context) (*domain.DashboardDTO, error) {
	id, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, errors.New("no company in context")
	}
	n, ok := f[id]
	if !ok {
		return nil, errors.New("unknown company")
	}
	return &domain.DashboardDTO{Atrasadas: n}, nil
}

func TestOverdueSweepJob_Sweep(t *testing.T) {
	a, b, broken := uuid.New(), uuid.New(), uuid.New()
	companies := &fakeCompanies{companies: []domain.Company{{BaseModel: domain.BaseModel{ID: a}, Nome: "A"}, {BaseModel: domain.BaseModel{ID: b}, Nome: "B"}, {BaseModel: domain.BaseModel{ID: broken}, Nome: "C"}}}
	reg := prometheus.NewRegistry()

	job := jobs.NewOverdueSweepJob(companies, fakeDashboards{a: 3, b: 0}, reg, zap.NewNop(), time.Minute)
	counts, err := job.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{a.String(): 3, b.String(): 0}, counts)
	n, err := promtest.GatherAndCount(reg, "os_orders_overdue")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	t.Run("deactivated companies drop out", func(t *testing.T) {
		companies.companies = companies.companies[:1]
		_, err := job.Sweep(context.Background())
		require.NoError(t, err)

		n, err := promtest.GatherAndCount(reg, "os_orders_overdue")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

type fakePruner struct {
	calls []int
}

func (f *fakePruner) CleanupOldLogs(_ context.Context, days int) (int64, error) {
	f.calls = append(f.calls, days)
	return 7, nil
}

func TestAuditCleanupJob_Run(t *testing.T) {
	pruner := &fakePruner{}
	jobs.NewAuditCleanupJob(pruner, 90, zap.NewNop(), time.Minute).Run()
	jobs.NewAuditCleanupJob(pruner, 0, zap.NewNop(), time.Minute).Run()

	assert.Equal(t, []int{90}, pruner.calls)
}
