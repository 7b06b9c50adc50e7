// Package pdf renders printable service orders with maroto.
//
// Three layouts share the same header:
//
//	completa  cliente block, items table, custom fields, totals, notes, signature
//	resumida  cliente name and phone, items summary, total
//	recibo    total, amount paid and balance
//
// Each copy is emitted as its own page.
package pdf

import (
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/estofaria/os-api/internal/domain"
)

// Layout selects what a printed order contains
type Layout string

const (
	LayoutCompleta Layout = "completa"
	LayoutResumida Layout = "resumida"
	LayoutRecibo   Layout = "recibo"
)

// MaxCopias is the largest number of copies one print request may ask for
const MaxCopias = 3

// ParseLayout validates a layout name. An empty name selects LayoutCompleta.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutCompleta:
		return LayoutCompleta, nil
	case LayoutResumida:
		return LayoutResumida, nil
	case LayoutRecibo:
		return LayoutRecibo, nil
	}
	return "", domain.NewValidationError("layout", "must be completa, resumida or recibo")
}

// ValidateCopias checks that n is within 1..MaxCopias
func ValidateCopias(n int) error {
	if n < 1 || n > MaxCopias {
		return domain.NewValidationError("copias", fmt.Sprintf("must be between 1 and %d", MaxCopias))
	}
	return nil
}

// Document is everything printed on an order
type Document struct {
	Company domain.CompanyDTO
	Ordem   *domain.OrdemDetalheDTO
	// Emitido is the print timestamp shown in the footer
	Emitido time.Time
	Loc     *time.Location
}

var (
	colorPrimary = &props.Color{Red: 55, Green: 65, Blue: 81}
	colorGray    = &props.Color{Red: 107, Green: 114, Blue: 128}
)

// Render produces the PDF bytes for doc in layout, repeated copias times
func Render(doc *Document, layout Layout, copias int) ([]byte, error) {
	if doc == nil || doc.Ordem == nil {
		return nil, fmt.Errorf("pdf: nothing to render")
	}
	if err := ValidateCopias(copias); err != nil {
		return nil, err
	}
	if doc.Loc == nil {
		doc.Loc = time.UTC
	}

	var body func(*Document) []core.Row
	switch layout {
	case LayoutCompleta:
		body = completaRows
	case LayoutResumida:
		body = resumidaRows
	case LayoutRecibo:
		body = reciboRows
	default:
		return nil, domain.NewValidationError("layout", "unknown layout")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Ordem de Serviço "+doc.Ordem.NumeroOS, true).
		WithAuthor(doc.Company.Nome, true).
		Build()

	m := maroto.New(cfg)
	for i := 1; i <= copias; i++ {
		p := page.New()
		p.Add(headerRow(doc, layout))
		p.Add(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
		p.Add(body(doc)...)
		p.Add(footerRow(doc, i, copias))
		m.AddPages(p)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return out.GetBytes(), nil
}

func headerRow(doc *Document, layout Layout) core.Row {
	o := doc.Ordem
	title := "ORDEM DE SERVIÇO"
	if layout == LayoutRecibo {
		title = "RECIBO"
	}
	status := ""
	if o.Status != nil {
		status = o.Status.Nome
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(doc.Company.Nome, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Status: "+nonEmpty(status, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(o.NumeroOS, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Abertura: "+o.DataAbertura.In(doc.Loc).Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func clienteRows(o *domain.OrdemDetalheDTO) []core.Row {
	if o.Cliente == nil {
		return nil
	}
	c := o.Cliente
	endereco := strings.Join(nonBlank(
		strings.TrimSpace(c.Rua+" "+c.Numero),
		c.Bairro,
		strings.TrimSpace(c.Cidade+" "+c.Estado),
		c.CEP,
	), " - ")

	return []core.Row{
		sectionTitle("CLIENTE"),
		row.New(6).Add(col.New(12).Add(
			text.New(c.Nome, props.Text{Style: fontstyle.Bold, Size: 10}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Documento: %s   |   Telefone: %s   |   Email: %s",
				nonEmpty(c.DocumentoFormatado, "-"),
				nonEmpty(c.TelefoneFormatado, "-"),
				nonEmpty(c.Email, "-"),
			), props.Text{Size: 8, Color: colorGray}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New("Endereço: "+nonEmpty(endereco, "-"), props.Text{Size: 8, Color: colorGray}),
		)),
	}
}

func itemsTable(o *domain.OrdemDetalheDTO) []core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1,
		}))
	}
	rows := []core.Row{
		sectionTitle("ITENS"),
		row.New(6).Add(
			h("Qtd.", 1, align.Center),
			h("Descrição", 6, align.Left),
			h("Valor unit.", 2, align.Right),
			h("Total", 3, align.Right),
		),
		line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}),
	}
	for _, it := range o.Itens {
		rows = append(rows, row.New(6).Add(
			col.New(1).Add(text.New(Quantity(it.Quantidade), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.Descricao, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(BRL(it.ValorUnitario), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(BRL(it.ValorTotal), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	if len(o.Itens) == 0 {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Nenhum item", props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	}
	return rows
}

func camposRows(o *domain.OrdemDetalheDTO) []core.Row {
	var rows []core.Row
	for _, c := range o.Campos {
		if c.Valor == "" {
			continue
		}
		valor := c.Valor
		if c.Tipo == domain.CampoTipoCheckbox {
			valor = map[bool]string{true: "Sim", false: "Não"}[c.Valor == "true"]
		}
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(c.Nome+":", props.Text{Style: fontstyle.Bold, Size: 8})),
			col.New(8).Add(text.New(valor, props.Text{Size: 8})),
		))
	}
	if len(rows) == 0 {
		return nil
	}
	return append([]core.Row{sectionTitle("INFORMAÇÕES ADICIONAIS")}, rows...)
}

func totalsRow(o *domain.OrdemDetalheDTO) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right})
	}
	return row.New(16).Add(
		col.New(6),
		col.New(3).Add(label("Total:"), label("Pago:"), label("Saldo:")),
		col.New(3).Add(value(BRL(o.ValorTotal)), value(BRL(o.ValorPago)), value(BRL(o.Saldo))),
	)
}

func prevista(o *domain.OrdemDetalheDTO) string {
	if o.DataPrevista == nil {
		return "-"
	}
	d, err := domain.ParseDate(*o.DataPrevista)
	if err != nil {
		return *o.DataPrevista
	}
	return d.Format("02/01/2006")
}

func completaRows(doc *Document) []core.Row {
	o := doc.Ordem
	rows := clienteRows(o)
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New("Previsão de entrega: "+prevista(o), props.Text{Size: 9, Top: 1}),
	)))
	rows = append(rows, itemsTable(o)...)
	rows = append(rows, camposRows(o)...)
	rows = append(rows, line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.3}))
	rows = append(rows, totalsRow(o))

	if obs := strings.TrimSpace(o.Observacoes); obs != "" {
		rows = append(rows,
			sectionTitle("OBSERVAÇÕES"),
			row.New(12).Add(col.New(12).Add(text.New(obs, props.Text{Size: 8}))),
		)
	}

	rows = append(rows,
		row.New(20),
		row.New(1).Add(col.New(3), col.New(6).Add(line.New(props.Line{Color: colorGray, Thickness: 0.3})), col.New(3)),
		row.New(6).Add(col.New(12).Add(
			text.New("Assinatura do cliente", props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
		)),
	)
	return rows
}

func resumidaRows(doc *Document) []core.Row {
	o := doc.Ordem
	var rows []core.Row
	if o.Cliente != nil {
		rows = append(rows, row.New(7).Add(
			col.New(8).Add(text.New(o.Cliente.Nome, props.Text{Style: fontstyle.Bold, Size: 10, Top: 1})),
			col.New(4).Add(text.New(nonEmpty(o.Cliente.TelefoneFormatado, "-"), props.Text{Size: 9, Align: align.Right, Top: 1})),
		))
	}
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New("Previsão de entrega: "+prevista(o), props.Text{Size: 9, Top: 1}),
	)))
	rows = append(rows, sectionTitle("ITENS"))
	for _, it := range o.Itens {
		rows = append(rows, row.New(5).Add(
			col.New(9).Add(text.New(Quantity(it.Quantidade)+" x "+it.Descricao, props.Text{Size: 8})),
			col.New(3).Add(text.New(BRL(it.ValorTotal), props.Text{Size: 8, Align: align.Right})),
		))
	}
	rows = append(rows,
		line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.3}),
		row.New(8).Add(
			col.New(9).Add(text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2})),
			col.New(3).Add(text.New(BRL(o.ValorTotal), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right})),
		),
	)
	return rows
}

func reciboRows(doc *Document) []core.Row {
	o := doc.Ordem
	nome := "-"
	if o.Cliente != nil {
		nome = o.Cliente.Nome
	}
	field := func(label, value string) core.Row {
		return row.New(7).Add(
			col.New(4).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 9, Top: 1})),
			col.New(8).Add(text.New(value, props.Text{Size: 9, Top: 1})),
		)
	}
	return []core.Row{
		row.New(4),
		field("Cliente:", nome),
		field("Ordem de serviço:", o.NumeroOS),
		field("Valor total:", BRL(o.ValorTotal)),
		field("Valor pago:", BRL(o.ValorPago)),
		field("Saldo:", BRL(o.Saldo)),
		field("Data:", doc.Emitido.In(doc.Loc).Format("02/01/2006")),
		row.New(20),
		row.New(1).Add(col.New(3), col.New(6).Add(line.New(props.Line{Color: colorGray, Thickness: 0.3})), col.New(3)),
		row.New(6).Add(col.New(12).Add(
			text.New(doc.Company.Nome, props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
		)),
	}
}

func footerRow(doc *Document, copy, total int) core.Row {
	label := "Emitido em " + doc.Emitido.In(doc.Loc).Format("02/01/2006 15:04")
	if total > 1 {
		label += fmt.Sprintf("   |   Via %d de %d", copy, total)
	}
	return row.New(10).Add(col.New(12).Add(
		text.New(label, props.Text{Size: 7, Align: align.Right, Color: colorGray, Top: 4}),
	))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func nonBlank(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
