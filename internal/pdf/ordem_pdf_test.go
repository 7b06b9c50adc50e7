package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"5.5", "R$ 5,50"},
		{"1234.56", "R$ 1.234,56"},
		{"1000000", "R$ 1.000.000,00"},
		{"10.005", "R$ 10,01"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, BRL(decimal.RequireFromString(tc.in)))
		})
	}
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, "2", Quantity(decimal.RequireFromString("2.000")))
	assert.Equal(t, "1,5", Quantity(decimal.RequireFromString("1.5")))
}

func TestParseLayout(t *testing.T) {
	for in, want := range map[string]Layout{
		"":         LayoutCompleta,
		"completa": LayoutCompleta,
		"RESUMIDA": LayoutResumida,
		" recibo ": LayoutRecibo,
	} {
		got, err := ParseLayout(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLayout("etiqueta")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateCopias(t *testing.T) {
	assert.NoError(t, ValidateCopias(1))
	assert.NoError(t, ValidateCopias(MaxCopias))
	assert.ErrorIs(t, ValidateCopias(0), domain.ErrValidation)
	assert.ErrorIs(t, ValidateCopias(MaxCopias+1), domain.ErrValidation)
}

func sampleDocument() *Document {
	prevista := "2026-03-20"
	total := decimal.RequireFromString("250")
	pago := decimal.RequireFromString("100")
	return &Document{
		Company: domain.CompanyDTO{ID: uuid.New(), Nome: "Estofados Alpha"},
		Ordem: &domain.OrdemDetalheDTO{
			OrdemDTO: domain.OrdemDTO{
				ID:           uuid.New(),
				NumeroOS:     "OS-0042",
				DataAbertura: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
				DataPrevista: &prevista,
				ValorTotal:   total,
				ValorPago:    pago,
				Saldo:        total.Sub(pago),
				Observacoes:  "Banco com rasgo lateral",
				Cliente: &domain.ClienteDTO{
					Nome:               "Maria Souza",
					DocumentoFormatado: "529.982.247-25",
					TelefoneFormatado:  "(11) 98765-4321",
					Cidade:             "Campinas",
					Estado:             "SP",
				},
				Status: &domain.StatusConfigDTO{Nome: "Em Produção"},
			},
			Itens: []domain.OSItemDTO{
				{Descricao: "Reforma de banco", Quantidade: decimal.NewFromInt(1), ValorUnitario: total, ValorTotal: total},
			},
			Campos: []domain.ValorCampoDTO{
				{Nome: "Modelo", Tipo: domain.CampoTipoTexto, Valor: "CG 160"},
				{Nome: "Bordado", Tipo: domain.CampoTipoCheckbox, Valor: "true"},
			},
		},
		Emitido: time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
	}
}

func TestRender_AllLayouts(t *testing.T) {
	for _, layout := range []Layout{LayoutCompleta, LayoutResumida, LayoutRecibo} {
		t.Run(string(layout), func(t *testing.T) {
			out, err := Render(sampleDocument(), layout, 2)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output is not a PDF")
		})
	}
}

func TestRender_Rejects(t *testing.T) {
	_, err := Render(sampleDocument(), LayoutCompleta, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Render(sampleDocument(), Layout("etiqueta"), 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Render(&Document{}, LayoutCompleta, 1)
	assert.Error(t, err)
}
