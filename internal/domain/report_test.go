package domain_test

import (
	"testing"
	"time"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(status uuid.UUID, total string, opened time.Time) domain.OrdemServico {
	o := domain.OrdemServico{
		StatusID:     status,
		ValorTotal:   decimal.RequireFromString(total),
		DataAbertura: opened,
	}
	o.ID = uuid.New()
	o.CreatedAt = opened
	return o
}

func dateOnly(s string) *time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestRevenue_ExcludesCancelled(t *testing.T) {
	flow := standardFlow(uuid.New())
	emProducao, cancelada := flow[0], flow[2]
	now := time.Now()

	orders := []domain.OrdemServico{
		order(emProducao.ID, "100", now),
		order(cancelada.ID, "50", now),
	}
	assert.Equal(t, "100", domain.Revenue(orders, flow).String())
}

func TestSummarize(t *testing.T) {
	flow := standardFlow(uuid.New())
	emProducao, finalizada, cancelada := flow[0], flow[1], flow[2]
	opened := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	done1 := order(finalizada.ID, "300", opened)
	f1 := opened.Add(48 * time.Hour)
	done1.DataFinalizacao = &f1

	done2 := order(finalizada.ID, "100", opened)
	f2 := opened.Add(96 * time.Hour)
	done2.DataFinalizacao = &f2

	orders := []domain.OrdemServico{
		done1,
		done2,
		order(emProducao.ID, "200", opened),
		order(cancelada.ID, "1000", opened),
	}

	got := domain.Summarize(orders, flow)

	want := domain.ReportSummary{
		Faturado:       decimal.NewFromInt(600),
		QtdOS:          4,
		Canceladas:     1,
		Finalizadas:    2,
		TicketMedio:    decimal.NewFromInt(150),
		TempoMedioDias: 3,
	}
	opts := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := domain.Summarize(nil, nil)
	assert.Equal(t, 0, got.QtdOS)
	assert.True(t, got.Faturado.IsZero())
	assert.True(t, got.TicketMedio.IsZero())
	assert.Zero(t, got.TempoMedioDias)
}

func TestFilterOrders(t *testing.T) {
	flow := standardFlow(uuid.New())
	criada, emProducao := flow[3], flow[0]
	vendedor := uuid.New()

	jan := order(criada.ID, "10", time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))
	jan.VendedorID = &vendedor
	feb := order(emProducao.ID, "20", time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC))
	mar := order(criada.ID, "30", time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC))
	orders := []domain.OrdemServico{jan, feb, mar}

	got := domain.FilterOrders(orders, domain.ReportFilter{
		Inicio: dateOnly("2025-01-15"),
		Fim:    dateOnly("2025-02-01"),
	}, time.UTC)
	assert.Len(t, got, 2)

	got = domain.FilterOrders(orders, domain.ReportFilter{VendedorID: &vendedor}, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, jan.ID, got[0].ID)

	got = domain.FilterOrders(orders, domain.ReportFilter{StatusID: &criada.ID}, time.UTC)
	assert.Len(t, got, 2)

	got = domain.FilterOrders(orders, domain.ReportFilter{Fim: dateOnly("2025-03-31")}, time.UTC)
	assert.Len(t, got, 3)
}

func TestComputeDashboard(t *testing.T) {
	flow := standardFlow(uuid.New())
	emProducao, finalizada, cancelada, criada := flow[0], flow[1], flow[2], flow[3]
	now := time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC)

	dueToday := order(criada.ID, "100", now.Add(-72*time.Hour))
	dueToday.DataPrevista = dateOnly("2025-05-20")

	late := order(emProducao.ID, "200", now.Add(-240*time.Hour))
	late.DataPrevista = dateOnly("2025-05-18")

	finishedToday := order(finalizada.ID, "350", now.Add(-96*time.Hour))
	finishedToday.DataPrevista = dateOnly("2025-05-19")
	fin := now.Add(-time.Hour)
	finishedToday.DataFinalizacao = &fin

	cancelledToday := order(cancelada.ID, "999", now.Add(-24*time.Hour))
	cancelledToday.DataPrevista = dateOnly("2025-05-20")

	orders := []domain.OrdemServico{dueToday, late, finishedToday, cancelledToday}
	c := domain.ComputeDashboard(orders, flow, now, time.UTC)

	assert.Equal(t, 1, c.OSDoDia)
	assert.Equal(t, 1, c.EmProducao)
	assert.Equal(t, 1, c.FinalizadasHoje)
	assert.Equal(t, 1, c.Atrasadas)
	assert.Equal(t, "350", c.FaturamentoHoje.String())
	assert.Equal(t, 1, c.PorStatus[cancelada.ID])
	assert.Equal(t, 1, c.PorStatus[criada.ID])
}

func TestAgendaFor(t *testing.T) {
	flow := standardFlow(uuid.New())
	criada, cancelada := flow[3], flow[2]
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	second := order(criada.ID, "1", base.Add(time.Hour))
	second.DataPrevista = dateOnly("2025-06-10")
	first := order(criada.ID, "1", base)
	first.DataPrevista = dateOnly("2025-06-10")
	cancelled := order(cancelada.ID, "1", base)
	cancelled.DataPrevista = dateOnly("2025-06-10")
	otherDay := order(criada.ID, "1", base)
	otherDay.DataPrevista = dateOnly("2025-06-11")
	undated := order(criada.ID, "1", base)

	got := domain.AgendaFor([]domain.OrdemServico{second, cancelled, otherDay, first, undated}, flow, *dateOnly("2025-06-10"))
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
}
