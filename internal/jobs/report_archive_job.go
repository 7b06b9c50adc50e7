package jobs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReportArchiveJobName is the scheduler name of the daily report archive
const ReportArchiveJobName = "report_archive"

// archiveConcurrency bounds how many companies are exported at once
const archiveConcurrency = 4

// CompanyLister lists the tenants a job runs for
type CompanyLister interface {
	ListActive(ctx context.Context) ([]domain.Company, error)
}

// ReportWriter renders a tenant's report as CSV
type ReportWriter interface {
	WriteCSV(ctx context.Context, w io.Writer, f domain.ReportFilter) (int, error)
}

// ArchiveKey is the storage key of a company's report for day (YYYY-MM-DD)
func ArchiveKey(companyID uuid.UUID, day string) string {
	return path.Join("reports", companyID.String(), day+".csv")
}

// ReportArchiveJob uploads each active company's report of the previous day.
// Days already archived are skipped, so a rerun only fills gaps.
type ReportArchiveJob struct {
	companies CompanyLister
	reports   ReportWriter
	store     storage.Storage
	loc       *time.Location
	logger    *zap.Logger
	timeout   time.Duration
	now       func() time.Time
}

func NewReportArchiveJob(
	companies CompanyLister,
	reports ReportWriter,
	store storage.Storage,
	loc *time.Location,
	logger *zap.Logger,
	timeout time.Duration,
) *ReportArchiveJob {
	return &ReportArchiveJob{
		companies: companies,
		reports:   reports,
		store:     store,
		loc:       loc,
		logger:    logger.With(zap.String("job_name", ReportArchiveJobName)),
		timeout:   timeout,
		now:       time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (j *ReportArchiveJob) SetClock(now func() time.Time) {
	j.now = now
}

// previousDay returns the calendar day before today in the report timezone,
// as a UTC midnight date matching domain.ParseDate
func (j *ReportArchiveJob) previousDay() time.Time {
	local := j.now().In(j.loc)
	return time.Date(local.Year(), local.Month(), local.Day()-1, 0, 0, 0, 0, time.UTC)
}

// Run is called by the scheduler
func (j *ReportArchiveJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.Archive(ctx); err != nil {
		j.logger.Error("report archive failed", zap.Error(err))
	}
}

// Archive exports the previous day for every active company and returns the
// number of reports written. One company failing does not stop the others.
func (j *ReportArchiveJob) Archive(ctx context.Context) (int, error) {
	start := time.Now()
	day := j.previousDay()
	dayStr := day.Format("2006-01-02")

	companies, err := j.companies.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list companies: %w", err)
	}

	results := make([]bool, len(companies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(archiveConcurrency)
	for i := range companies {
		company := companies[i]
		g.Go(func() error {
			written, err := j.archiveCompany(gctx, company, day, dayStr)
			if err != nil {
				j.logger.Error("failed to archive company report",
					zap.String("company_id", company.ID.String()),
					zap.String("day", dayStr),
					zap.Error(err))
				return nil
			}
			results[i] = written
			return nil
		})
	}
	_ = g.Wait()

	written := 0
	for _, ok := range results {
		if ok {
			written++
		}
	}

	j.logger.Info("report archive completed",
		zap.String("day", dayStr),
		zap.Int("companies", len(companies)),
		zap.Int("written", written),
		zap.Duration("duration", time.Since(start)))
	return written, ctx.Err()
}

func (j *ReportArchiveJob) archiveCompany(ctx context.Context, company domain.Company, day time.Time, dayStr string) (bool, error) {
	key := ArchiveKey(company.ID, dayStr)
	exists, err := j.store.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	var buf bytes.Buffer
	rows, err := j.reports.WriteCSV(auth.ForCompany(ctx, company.ID), &buf, domain.ReportFilter{
		Inicio: &day,
		Fim:    &day,
	})
	if err != nil {
		return false, err
	}

	size, err := j.store.Put(ctx, key, "text/csv; charset=utf-8", &buf)
	if err != nil {
		return false, err
	}

	j.logger.Debug("company report archived",
		zap.String("company_id", company.ID.String()),
		zap.String("key", key),
		zap.Int("rows", rows),
		zap.Int64("bytes", size))
	return true, nil
}
