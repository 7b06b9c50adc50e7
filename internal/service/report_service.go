package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/mapper"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// recentOrders is how many orders the dashboard lists
const recentOrders = 5

// ReportService computes the dashboard, the daily agenda and period reports.
// All figures are derived from the stored orders on every call.
type ReportService struct {
	ordemRepo   *repository.OrdemServicoRepository
	statusRepo  *repository.StatusConfigRepository
	profileRepo *repository.ProfileRepository
	loc         *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

func NewReportService(
	ordemRepo *repository.OrdemServicoRepository,
	statusRepo *repository.StatusConfigRepository,
	profileRepo *repository.ProfileRepository,
	cfg config.ReportConfig,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		ordemRepo:   ordemRepo,
		statusRepo:  statusRepo,
		profileRepo: profileRepo,
		loc:         cfg.Location(),
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// Today returns the current calendar day in the report timezone
func (s *ReportService) Today() string {
	return domain.LocalDate(s.now(), s.loc)
}

func (s *ReportService) names(ctx context.Context, ordens ...domain.OrdemServico) (map[uuid.UUID]string, error) {
	names, err := s.profileRepo.NamesByUserIDs(ctx, mapper.PeopleOf(ordens...))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve names: %w", err)
	}
	return names, nil
}

// Dashboard returns today's counters, the per-status breakdown and the latest orders
func (s *ReportService) Dashboard(ctx context.Context) (*domain.DashboardDTO, error) {
	var (
		statuses []domain.StatusConfig
		ordens   []domain.OrdemServico
		recentes []domain.OrdemServico
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statuses, err = s.statusRepo.List(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		ordens, err = s.ordemRepo.ListAll(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		recentes, err = s.ordemRepo.ListRecent(gctx, recentOrders)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	now := s.now()
	counts := domain.ComputeDashboard(ordens, statuses, now, s.loc)

	porStatus := make([]domain.StatusCountDTO, 0, len(statuses))
	for _, st := range statuses {
		porStatus = append(porStatus, domain.StatusCountDTO{
			StatusID: st.ID,
			Nome:     st.Nome,
			Cor:      st.Cor,
			Total:    counts.PorStatus[st.ID],
		})
	}

	names, err := s.names(ctx, recentes...)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardDTO{
		Data:            domain.LocalDate(now, s.loc),
		OSDoDia:         counts.OSDoDia,
		EmProducao:      counts.EmProducao,
		FinalizadasHoje: counts.FinalizadasHoje,
		Atrasadas:       counts.Atrasadas,
		FaturamentoHoje: counts.FaturamentoHoje,
		PorStatus:       porStatus,
		Recentes:        mapper.ToOrdemDTOs(recentes, names),
	}, nil
}

// Agenda lists the non-cancelled orders promised for day (YYYY-MM-DD). An empty
// day means today in the report timezone.
func (s *ReportService) Agenda(ctx context.Context, day string) (*domain.AgendaDTO, error) {
	if day == "" {
		day = s.Today()
	}
	date, err := domain.ParseDate(day)
	if err != nil {
		return nil, domain.NewValidationError("data", "must be YYYY-MM-DD")
	}

	statuses, err := s.statusRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	ordens, err := s.ordemRepo.ListAll(ctx, &repository.OrdemFilter{DataPrevista: &date})
	if err != nil {
		return nil, fmt.Errorf("failed to list ordens: %w", err)
	}
	agenda := domain.AgendaFor(ordens, statuses, date)

	names, err := s.names(ctx, agenda...)
	if err != nil {
		return nil, err
	}
	return &domain.AgendaDTO{
		Data:   day,
		Ordens: mapper.ToOrdemDTOs(agenda, names),
	}, nil
}

// load returns the orders matching f. The store query is widened by a day on
// each side so that opening dates are compared in the report timezone.
func (s *ReportService) load(ctx context.Context, f domain.ReportFilter) ([]domain.OrdemServico, []domain.StatusConfig, error) {
	if f.Inicio != nil && f.Fim != nil && f.Fim.Before(*f.Inicio) {
		return nil, nil, domain.NewValidationError("fim", "must not be before inicio")
	}

	filter := &repository.OrdemFilter{VendedorID: f.VendedorID, StatusID: f.StatusID}
	if f.Inicio != nil {
		inicio := f.Inicio.AddDate(0, 0, -1)
		filter.Inicio = &inicio
	}
	if f.Fim != nil {
		fim := f.Fim.AddDate(0, 0, 1)
		filter.Fim = &fim
	}

	var (
		statuses []domain.StatusConfig
		ordens   []domain.OrdemServico
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statuses, err = s.statusRepo.List(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		ordens, err = s.ordemRepo.ListAll(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to load report: %w", err)
	}
	return domain.FilterOrders(ordens, f, s.loc), statuses, nil
}

// Report aggregates the orders opened within the filter's period
func (s *ReportService) Report(ctx context.Context, f domain.ReportFilter) (*domain.ReportDTO, error) {
	ordens, statuses, err := s.load(ctx, f)
	if err != nil {
		return nil, err
	}
	names, err := s.names(ctx, ordens...)
	if err != nil {
		return nil, err
	}

	dto := &domain.ReportDTO{
		Summary: domain.Summarize(ordens, statuses),
		Ordens:  mapper.ToOrdemDTOs(ordens, names),
	}
	if f.Inicio != nil {
		inicio := domain.CalendarDate(*f.Inicio)
		dto.Inicio = &inicio
	}
	if f.Fim != nil {
		fim := domain.CalendarDate(*f.Fim)
		dto.Fim = &fim
	}
	return dto, nil
}

var csvHeader = []string{
	"numero_os", "cliente", "documento", "status", "vendedor",
	"data_abertura", "data_prevista", "data_finalizacao",
	"valor_total", "valor_pago", "saldo",
}

// WriteCSV streams the report's orders as CSV to w and returns the row count
func (s *ReportService) WriteCSV(ctx context.Context, w io.Writer, f domain.ReportFilter) (int, error) {
	ordens, _, err := s.load(ctx, f)
	if err != nil {
		return 0, err
	}
	names, err := s.names(ctx, ordens...)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, o := range mapper.ToOrdemDTOs(ordens, names) {
		if err := cw.Write(csvRow(&o, s.loc)); err != nil {
			return 0, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}
	return len(ordens), nil
}

func csvRow(o *domain.OrdemDTO, loc *time.Location) []string {
	var cliente, documento, status, vendedor, prevista, finalizacao string
	if o.Cliente != nil {
		cliente, documento = o.Cliente.Nome, o.Cliente.Documento
	}
	if o.Status != nil {
		status = o.Status.Nome
	}
	if o.Vendedor != nil {
		vendedor = o.Vendedor.Nome
	}
	if o.DataPrevista != nil {
		prevista = *o.DataPrevista
	}
	if o.DataFinalizacao != nil {
		finalizacao = domain.LocalDate(*o.DataFinalizacao, loc)
	}
	return []string{
		o.NumeroOS,
		cliente,
		documento,
		status,
		vendedor,
		domain.LocalDate(o.DataAbertura, loc),
		prevista,
		finalizacao,
		o.ValorTotal.StringFixed(domain.MoneyPlaces),
		o.ValorPago.StringFixed(domain.MoneyPlaces),
		o.Saldo.StringFixed(domain.MoneyPlaces),
	}
}
