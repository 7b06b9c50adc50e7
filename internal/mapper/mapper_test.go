package mapper_test

import (
	"testing"
	"time"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/mapper"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToClienteDTO(t *testing.T) {
	now := time.Now()
	cliente := &domain.Cliente{
		BaseModel: domain.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Nome:          "Oficina do Zé",
		TipoDocumento: domain.TipoDocumentoCNPJ,
		Documento:     "11222333000181",
		Telefone:      "11987654321",
		Cidade:        "São Paulo",
		Estado:        "SP",
	}

	dto := mapper.ToClienteDTO(cliente)

	assert.Equal(t, cliente.ID, dto.ID)
	assert.Equal(t, "11222333000181", dto.Documento)
	assert.Equal(t, "11.222.333/0001-81", dto.DocumentoFormatado)
	assert.Equal(t, "(11) 98765-4321", dto.TelefoneFormatado)
	assert.Equal(t, "SP", dto.Estado)
}

func TestToOrdemDTO(t *testing.T) {
	vendedor := uuid.New()
	criador := uuid.New()
	prevista := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	status := &domain.StatusConfig{Nome: "Em Produção", Cor: "#f59e0b"}

	ordem := &domain.OrdemServico{
		NumeroOS:     "OS-0007",
		VendedorID:   &vendedor,
		CriadoPor:    &criador,
		DataPrevista: &prevista,
		ValorTotal:   decimal.NewFromInt(830),
		Status:       status,
		Pagamentos: []domain.Pagamento{
			{Valor: decimal.NewFromInt(400)},
			{Valor: decimal.NewFromInt(30)},
		},
	}
	names := map[uuid.UUID]string{vendedor: "Ana", criador: "Bruno"}

	dto := mapper.ToOrdemDTO(ordem, names)

	assert.Equal(t, "OS-0007", dto.NumeroOS)
	require.NotNil(t, dto.DataPrevista)
	assert.Equal(t, "2025-07-01", *dto.DataPrevista)
	assert.Equal(t, "430", dto.ValorPago.String())
	assert.Equal(t, "400", dto.Saldo.String())
	require.NotNil(t, dto.Vendedor)
	assert.Equal(t, "Ana", dto.Vendedor.Nome)
	require.NotNil(t, dto.Criador)
	assert.Equal(t, "Bruno", dto.Criador.Nome)
	require.NotNil(t, dto.Status)
	assert.Equal(t, "Em Produção", dto.Status.Nome)
	assert.Nil(t, dto.Cliente)
}

func TestToOrdemDTO_NilNames(t *testing.T) {
	vendedor := uuid.New()
	dto := mapper.ToOrdemDTO(&domain.OrdemServico{VendedorID: &vendedor}, nil)
	require.NotNil(t, dto.Vendedor)
	assert.Equal(t, vendedor, dto.Vendedor.UserID)
	assert.Empty(t, dto.Vendedor.Nome)
	assert.Nil(t, dto.Criador)
	assert.Nil(t, dto.DataPrevista)
}

func TestPeopleOf(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ids := mapper.PeopleOf(
		domain.OrdemServico{CriadoPor: &a, VendedorID: &b},
		domain.OrdemServico{CriadoPor: &a},
		domain.OrdemServico{},
	)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, ids)
}

func TestToValorCampoDTOs(t *testing.T) {
	campo := func(nome string, ordem int, ativo, editavel bool) domain.CampoOS {
		c := domain.CampoOS{Nome: nome, Ordem: ordem, Ativo: ativo, EditavelAposFinalizacao: editavel, Tipo: domain.CampoTipoTexto}
		c.ID = uuid.New()
		return c
	}
	cor := campo("Cor da linha", 1, true, false)
	obs := campo("Obs. entrega", 0, true, true)
	antigo := campo("Antigo", 2, false, false)
	semValor := campo("Descontinuado", 3, false, false)

	valores := []domain.ValorCampoOS{
		{CampoID: cor.ID, Valor: "preta"},
		{CampoID: antigo.ID, Valor: "x"},
	}

	open := mapper.ToValorCampoDTOs([]domain.CampoOS{cor, obs, antigo, semValor}, valores, false)
	require.Len(t, open, 3)
	assert.Equal(t, "Obs. entrega", open[0].Nome)
	assert.Equal(t, "preta", open[1].Valor)
	assert.True(t, open[1].Editavel)
	assert.False(t, open[2].Editavel)

	closed := mapper.ToValorCampoDTOs([]domain.CampoOS{cor, obs}, valores, true)
	require.Len(t, closed, 2)
	assert.True(t, closed[0].Editavel)
	assert.False(t, closed[1].Editavel)
}

func TestToNumeracaoDTO(t *testing.T) {
	dto := mapper.ToNumeracaoDTO(&domain.NumeracaoOS{Prefixo: "OS-", ProximoNumero: 42}, 4)
	assert.Equal(t, "OS-0042", dto.Exemplo)
	assert.EqualValues(t, 42, dto.ProximoNumero)
}

func TestToHistoricoDTO(t *testing.T) {
	actor := uuid.New()
	h := &domain.HistoricoStatus{
		UsuarioID: &actor,
		Status:    &domain.StatusConfig{Nome: "Finalizada", Cor: "#10b981"},
	}
	dto := mapper.ToHistoricoDTO(h, map[uuid.UUID]string{actor: "Carla"})
	assert.Equal(t, "Finalizada", dto.StatusNome)
	assert.Equal(t, "Carla", dto.UsuarioNome)
}
