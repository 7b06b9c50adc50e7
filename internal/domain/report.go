package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ReportFilter narrows the orders a report aggregates.
// Inicio and Fim bound DataAbertura and are inclusive calendar days.
type ReportFilter struct {
	Inicio     *time.Time
	Fim        *time.Time
	VendedorID *uuid.UUID
	StatusID   *uuid.UUID
}

// ReportSummary holds the aggregate figures of a report
type ReportSummary struct {
	Faturado       decimal.Decimal `json:"faturado"`
	QtdOS          int             `json:"qtdOS"`
	Canceladas     int             `json:"canceladas"`
	Finalizadas    int             `json:"finalizadas"`
	TicketMedio    decimal.Decimal `json:"ticketMedio"`
	TempoMedioDias float64         `json:"tempoMedioDias"`
}

// DashboardCounts holds the figures shown on the dashboard for one day
type DashboardCounts struct {
	OSDoDia         int               `json:"osDoDia"`
	EmProducao      int               `json:"emProducao"`
	FinalizadasHoje int               `json:"finalizadasHoje"`
	Atrasadas       int               `json:"atrasadas"`
	FaturamentoHoje decimal.Decimal   `json:"faturamentoHoje"`
	PorStatus       map[uuid.UUID]int `json:"porStatus"`
}

// CalendarDate returns the YYYY-MM-DD key of a date-only value (stored at UTC midnight)
func CalendarDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// LocalDate returns the YYYY-MM-DD key of an instant in loc
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func statusIndex(statuses []StatusConfig) map[uuid.UUID]*StatusConfig {
	idx := make(map[uuid.UUID]*StatusConfig, len(statuses))
	for i := range statuses {
		idx[statuses[i].ID] = &statuses[i]
	}
	return idx
}

// isCancelled treats an order whose status is unknown as not cancelled
func isCancelled(o *OrdemServico, idx map[uuid.UUID]*StatusConfig) bool {
	s, ok := idx[o.StatusID]
	return ok && s.IsCancelamento
}

func isFinal(o *OrdemServico, idx map[uuid.UUID]*StatusConfig) bool {
	s, ok := idx[o.StatusID]
	return ok && s.IsFinal
}

func isTerminal(o *OrdemServico, idx map[uuid.UUID]*StatusConfig) bool {
	s, ok := idx[o.StatusID]
	return ok && s.IsTerminal()
}

// FilterOrders returns the orders matching f, keeping input order
func FilterOrders(orders []OrdemServico, f ReportFilter, loc *time.Location) []OrdemServico {
	out := make([]OrdemServico, 0, len(orders))
	for _, o := range orders {
		opened := LocalDate(o.DataAbertura, loc)
		if f.Inicio != nil && opened < CalendarDate(*f.Inicio) {
			continue
		}
		if f.Fim != nil && opened > CalendarDate(*f.Fim) {
			continue
		}
		if f.VendedorID != nil && (o.VendedorID == nil || *o.VendedorID != *f.VendedorID) {
			continue
		}
		if f.StatusID != nil && o.StatusID != *f.StatusID {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Revenue sums ValorTotal over orders not in a cancellation status
func Revenue(orders []OrdemServico, statuses []StatusConfig) decimal.Decimal {
	idx := statusIndex(statuses)
	total := decimal.Zero
	for i := range orders {
		if isCancelled(&orders[i], idx) {
			continue
		}
		total = total.Add(orders[i].ValorTotal)
	}
	return total
}

// Summarize reduces orders into report totals. Cancelled orders count toward QtdOS
// but never toward Faturado.
func Summarize(orders []OrdemServico, statuses []StatusConfig) ReportSummary {
	idx := statusIndex(statuses)
	sum := ReportSummary{
		Faturado:    decimal.Zero,
		TicketMedio: decimal.Zero,
		QtdOS:       len(orders),
	}

	var days float64
	for i := range orders {
		o := &orders[i]
		if isCancelled(o, idx) {
			sum.Canceladas++
			continue
		}
		sum.Faturado = sum.Faturado.Add(o.ValorTotal)
		if isFinal(o, idx) && o.DataFinalizacao != nil {
			sum.Finalizadas++
			days += o.DataFinalizacao.Sub(o.DataAbertura).Hours() / 24
		}
	}

	if sum.QtdOS > 0 {
		sum.TicketMedio = sum.Faturado.Div(decimal.NewFromInt(int64(sum.QtdOS))).Round(MoneyPlaces)
	}
	if sum.Finalizadas > 0 {
		sum.TempoMedioDias = days / float64(sum.Finalizadas)
	}
	return sum
}

// ComputeDashboard reduces orders into the dashboard figures for the day containing now in loc
func ComputeDashboard(orders []OrdemServico, statuses []StatusConfig, now time.Time, loc *time.Location) DashboardCounts {
	idx := statusIndex(statuses)
	today := LocalDate(now, loc)
	initial, hasInitial := InitialStatus(statuses)

	c := DashboardCounts{
		FaturamentoHoje: decimal.Zero,
		PorStatus:       make(map[uuid.UUID]int),
	}
	for i := range orders {
		o := &orders[i]
		c.PorStatus[o.StatusID]++

		if o.DataPrevista != nil && CalendarDate(*o.DataPrevista) == today && !isCancelled(o, idx) {
			c.OSDoDia++
		}
		if !isTerminal(o, idx) {
			if !hasInitial || o.StatusID != initial.ID {
				c.EmProducao++
			}
			if o.DataPrevista != nil && CalendarDate(*o.DataPrevista) < today {
				c.Atrasadas++
			}
		}
		if isFinal(o, idx) && o.DataFinalizacao != nil && LocalDate(*o.DataFinalizacao, loc) == today {
			c.FinalizadasHoje++
			c.FaturamentoHoje = c.FaturamentoHoje.Add(o.ValorTotal)
		}
	}
	return c
}

// AgendaFor returns the non-cancelled orders promised for day, oldest first
func AgendaFor(orders []OrdemServico, statuses []StatusConfig, day time.Time) []OrdemServico {
	idx := statusIndex(statuses)
	key := CalendarDate(day)
	out := make([]OrdemServico, 0)
	for _, o := range orders {
		if o.DataPrevista == nil || CalendarDate(*o.DataPrevista) != key || isCancelled(&o, idx) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
