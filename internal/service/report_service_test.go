package service_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/estofaria/os-api/internal/service"
	"github.com/estofaria/os-api/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func date(s string) *time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

type seededOrdem struct {
	numero     string
	status     domain.StatusConfig
	total      string
	aberta     time.Time
	prevista   string
	finalizada *time.Time
}

func seedOrdens(t *testing.T, db *gorm.DB, tn *testutil.Tenant, cliente domain.Cliente, rows ...seededOrdem) {
	t.Helper()
	for i, r := range rows {
		o := domain.OrdemServico{
			CompanyID:       tn.Company.ID,
			NumeroOS:        r.numero,
			ClienteID:       cliente.ID,
			StatusID:        r.status.ID,
			DataAbertura:    r.aberta,
			DataFinalizacao: r.finalizada,
			ValorTotal:      decimal.RequireFromString(r.total),
		}
		o.CreatedAt = r.aberta.Add(time.Duration(i) * time.Second)
		if r.prevista != "" {
			o.DataPrevista = date(r.prevista)
		}
		require.NoError(t, db.Omit("Cliente", "Status", "Itens", "Pagamentos", "Valores").Create(&o).Error)
	}
}

func newReportService(db *gorm.DB, now time.Time) *service.ReportService {
	svc := service.NewReportService(
		repository.NewOrdemServicoRepository(db),
		repository.NewStatusConfigRepository(db),
		repository.NewProfileRepository(db),
		config.ReportConfig{Timezone: "America/Sao_Paulo"},
		zap.NewNop(),
	)
	svc.SetClock(func() time.Time { return now })
	return svc
}

func TestReport_SummaryExcludesCancelledRevenue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	cliente := testutil.CreateCliente(t, db, tn, "Maria", "529.982.247-25")

	march := func(day, hour int) time.Time { return time.Date(2026, 3, day, hour, 0, 0, 0, time.UTC) }
	fin := march(4, 15)
	seedOrdens(t, db, tn, cliente,
		seededOrdem{numero: "0001", status: tn.Finalizada, total: "100", aberta: march(1, 15), finalizada: &fin},
		seededOrdem{numero: "0002", status: tn.EmProducao, total: "50", aberta: march(2, 15)},
		seededOrdem{numero: "0003", status: tn.Cancelada, total: "999", aberta: march(3, 15)},
		// 01:00 UTC on the 6th is still the 5th in São Paulo
		seededOrdem{numero: "0004", status: tn.Criada, total: "30", aberta: march(6, 1)},
		seededOrdem{numero: "0005", status: tn.Criada, total: "70", aberta: march(20, 15)},
	)

	svc := newReportService(db, march(21, 12))
	report, err := svc.Report(tn.Context(), domain.ReportFilter{Inicio: date("2026-03-01"), Fim: date("2026-03-05")})
	require.NoError(t, err)

	want := domain.ReportSummary{
		Faturado:       decimal.RequireFromString("180"),
		QtdOS:          4,
		Canceladas:     1,
		Finalizadas:    1,
		TicketMedio:    decimal.RequireFromString("45"),
		TempoMedioDias: 3,
	}
	if diff := cmp.Diff(want, report.Summary, decimalEqual); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, report.Ordens, 4)
	assert.Equal(t, "2026-03-01", *report.Inicio)
	assert.Equal(t, "2026-03-05", *report.Fim)

	byStatus, err := svc.Report(tn.Context(), domain.ReportFilter{StatusID: &tn.Criada.ID})
	require.NoError(t, err)
	assert.Len(t, byStatus.Ordens, 2)

	_, err = svc.Report(tn.Context(), domain.ReportFilter{Inicio: date("2026-03-05"), Fim: date("2026-03-01")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReport_WriteCSV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	cliente := testutil.CreateCliente(t, db, tn, "Maria, a Costureira", "529.982.247-25")
	aberta := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	seedOrdens(t, db, tn, cliente,
		seededOrdem{numero: "OS-0001", status: tn.EmProducao, total: "1234.5", aberta: aberta, prevista: "2026-03-09"},
	)

	var buf bytes.Buffer
	n, err := newReportService(db, aberta).WriteCSV(tn.Context(), &buf, domain.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{
		"numero_os", "cliente", "documento", "status", "vendedor",
		"data_abertura", "data_prevista", "data_finalizacao",
		"valor_total", "valor_pago", "saldo",
	}, records[0])
	assert.Equal(t, []string{
		"OS-0001", "Maria, a Costureira", "52998224725", "Em Produção", "",
		"2026-03-02", "2026-03-09", "", "1234.50", "0.00", "1234.50",
	}, records[1])
}

func TestDashboard_Counts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	other := testutil.CreateTenant(t, db, "Beta")
	cliente := testutil.CreateCliente(t, db, tn, "Maria", "529.982.247-25")
	outroCliente := testutil.CreateCliente(t, db, other, "Outro", "529.982.247-25")

	// 2026-03-10 12:00 in São Paulo
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	earlier := now.Add(-2 * time.Hour)
	seedOrdens(t, db, tn, cliente,
		seededOrdem{numero: "0001", status: tn.Criada, total: "10", aberta: now.AddDate(0, 0, -5), prevista: "2026-03-10"},
		seededOrdem{numero: "0002", status: tn.EmProducao, total: "20", aberta: now.AddDate(0, 0, -4), prevista: "2026-03-08"},
		seededOrdem{numero: "0003", status: tn.Finalizada, total: "30", aberta: now.AddDate(0, 0, -3), prevista: "2026-03-09", finalizada: &earlier},
		seededOrdem{numero: "0004", status: tn.Cancelada, total: "40", aberta: now.AddDate(0, 0, -2), prevista: "2026-03-10"},
		seededOrdem{numero: "0005", status: tn.EmProducao, total: "50", aberta: now.AddDate(0, 0, -1), prevista: "2026-03-12"},
		seededOrdem{numero: "0006", status: tn.Criada, total: "60", aberta: now.Add(-time.Hour), prevista: "2026-03-15"},
	)
	seedOrdens(t, db, other, outroCliente,
		seededOrdem{numero: "0001", status: other.EmProducao, total: "999", aberta: now, prevista: "2026-03-01"},
	)

	dash, err := newReportService(db, now).Dashboard(tn.Context())
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", dash.Data)
	assert.Equal(t, 1, dash.OSDoDia, "cancelled orders are not due")
	assert.Equal(t, 2, dash.EmProducao)
	assert.Equal(t, 1, dash.FinalizadasHoje)
	assert.Equal(t, 1, dash.Atrasadas)
	assert.True(t, dash.FaturamentoHoje.Equal(decimal.RequireFromString("30")))

	totals := map[string]int{}
	for _, s := range dash.PorStatus {
		totals[s.Nome] = s.Total
	}
	assert.Equal(t, map[string]int{"Criada": 2, "Em Produção": 2, "Finalizada": 1, "Cancelada": 1}, totals)

	require.Len(t, dash.Recentes, 5)
	assert.Equal(t, "0006", dash.Recentes[0].NumeroOS)
}

func TestAgenda_ExcludesCancelled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	cliente := testutil.CreateCliente(t, db, tn, "Maria", "529.982.247-25")
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	seedOrdens(t, db, tn, cliente,
		seededOrdem{numero: "0002", status: tn.EmProducao, total: "10", aberta: now.AddDate(0, 0, -1), prevista: "2026-03-10"},
		seededOrdem{numero: "0001", status: tn.Criada, total: "10", aberta: now.AddDate(0, 0, -2), prevista: "2026-03-10"},
		seededOrdem{numero: "0003", status: tn.Cancelada, total: "10", aberta: now, prevista: "2026-03-10"},
		seededOrdem{numero: "0004", status: tn.Criada, total: "10", aberta: now, prevista: "2026-03-11"},
	)
	svc := newReportService(db, now)

	agenda, err := svc.Agenda(tn.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", agenda.Data)
	require.Len(t, agenda.Ordens, 2)
	assert.Equal(t, "0001", agenda.Ordens[0].NumeroOS)
	assert.Equal(t, "0002", agenda.Ordens[1].NumeroOS)

	tomorrow, err := svc.Agenda(tn.Context(), "2026-03-11")
	require.NoError(t, err)
	assert.Len(t, tomorrow.Ordens, 1)

	_, err = svc.Agenda(tn.Context(), "11/03/2026")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
