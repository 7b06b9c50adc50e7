package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// OverdueSweepJobName is the scheduler name of the overdue sweep
const OverdueSweepJobName = "overdue_sweep"

// DashboardSource computes the dashboard of the tenant in ctx
type DashboardSource interface {
	Dashboard(ctx context.Context) (*domain.DashboardDTO, error)
}

// OverdueSweepJob records, per active company, how many open orders are past
// their promised date. The count is logged and exported as a gauge.
type OverdueSweepJob struct {
	companies  CompanyLister
	dashboards DashboardSource
	overdue    *prometheus.GaugeVec
	logger     *zap.Logger
	timeout    time.Duration
}

func NewOverdueSweepJob(companies CompanyLister, dashboards DashboardSource, reg prometheus.Registerer, logger *zap.Logger, timeout time.Duration) *OverdueSweepJob {
	overdue := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "os_orders_overdue",
		Help: "Open service orders past their promised date, as of the last sweep.",
	}, []string{"company_id"})
	reg.MustRegister(overdue)

	return &OverdueSweepJob{
		companies:  companies,
		dashboards: dashboards,
		overdue:    overdue,
		logger:     logger.With(zap.String("job_name", OverdueSweepJobName)),
		timeout:    timeout,
	}
}

// Run is called by the scheduler
func (j *OverdueSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.Sweep(ctx); err != nil {
		j.logger.Error("overdue sweep failed", zap.Error(err))
	}
}

// Sweep returns the overdue count per company id
func (j *OverdueSweepJob) Sweep(ctx context.Context) (map[string]int, error) {
	companies, err := j.companies.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	// companies that were deactivated since the last sweep drop out of the gauge
	j.overdue.Reset()

	counts := make(map[string]int, len(companies))
	total := 0
	for _, company := range companies {
		dash, err := j.dashboards.Dashboard(auth.ForCompany(ctx, company.ID))
		if err != nil {
			j.logger.Error("failed to compute overdue orders",
				zap.String("company_id", company.ID.String()),
				zap.Error(err))
			continue
		}

		id := company.ID.String()
		counts[id] = dash.Atrasadas
		total += dash.Atrasadas
		j.overdue.WithLabelValues(id).Set(float64(dash.Atrasadas))

		if dash.Atrasadas > 0 {
			j.logger.Warn("company has overdue orders",
				zap.String("company_id", id),
				zap.String("company", company.Nome),
				zap.Int("overdue", dash.Atrasadas))
		}
	}

	j.logger.Info("overdue sweep completed",
		zap.Int("companies", len(companies)),
		zap.Int("overdue", total))
	return counts, nil
}
