package main

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeedFile_Default(t *testing.T) {
	f, err := os.Open("../../seeds/default.yaml")
	require.NoError(t, err)
	defer f.Close()

	seed, err := LoadSeedFile(f)
	require.NoError(t, err)
	assert.Equal(t, "Estofaria Exemplo", seed.Company.Nome)
	assert.Len(t, seed.Status, 6)
	assert.True(t, seed.Status[5].Cancelamento)
	assert.Equal(t, "OS-", seed.Numeracao.Prefixo)
}

func TestLoadSeedFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "statuses:\n  - nome: Criada\n"},
		{"empty status name", "status:\n  - cor: '#fff'\n"},
		{"final and cancel", "status:\n  - nome: X\n    final: true\n    cancelamento: true\n"},
		{"two cancel statuses", "status:\n  - nome: A\n    cancelamento: true\n  - nome: B\n    cancelamento: true\n"},
		{"bad price", "catalogo:\n  - categoria: Bancos\n    servicos:\n      - nome: Reforma\n        preco: abc\n"},
		{"negative price", "catalogo:\n  - categoria: Bancos\n    produtos:\n      - nome: Espuma\n        preco: '-1'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeedFile(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

const seedDoc = `
company:
  nome: Estofaria Nova
numeracao:
  prefixo: "EN-"
  proximoNumero: 10
status:
  - nome: Criada
  - nome: Finalizada
    final: true
  - nome: Cancelada
    cancelamento: true
catalogo:
  - categoria: Bancos
    servicos:
      - nome: Reforma
        preco: "250.5"
    produtos:
      - nome: Espuma
        preco: "80"
`

func TestApplySeed_CreatesCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seed, err := LoadSeedFile(strings.NewReader(seedDoc))
	require.NoError(t, err)

	res, err := ApplySeed(context.Background(), db, uuid.Nil, seed)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.CompanyID)
	assert.Equal(t, 3, res.Status)
	assert.Equal(t, 1, res.Categorias)
	assert.Equal(t, 1, res.Servicos)
	assert.Equal(t, 1, res.Produtos)
	assert.True(t, res.Numeracao)

	var statuses []domain.StatusConfig
	require.NoError(t, db.Where("company_id = ?", res.CompanyID).Order("ordem").Find(&statuses).Error)
	require.Len(t, statuses, 3)
	assert.Equal(t, 1, statuses[0].Ordem)
	assert.True(t, statuses[1].IsFinal)
	assert.True(t, statuses[2].IsCancelamento)

	var servico domain.Servico
	require.NoError(t, db.Where("company_id = ?", res.CompanyID).First(&servico).Error)
	assert.Equal(t, "250.5", servico.Preco.String())
	require.NotNil(t, servico.CategoriaID)

	var numeracao domain.NumeracaoOS
	require.NoError(t, db.Where("company_id = ?", res.CompanyID).First(&numeracao).Error)
	assert.Equal(t, "EN-", numeracao.Prefixo)
	assert.Equal(t, int64(10), numeracao.ProximoNumero)

	t.Run("rerun keeps existing data", func(t *testing.T) {
		again, err := ApplySeed(context.Background(), db, res.CompanyID, seed)
		require.NoError(t, err)
		assert.Equal(t, &SeedResult{CompanyID: res.CompanyID}, again)
	})
}

func TestApplySeed_ExistingTenantKeepsStatuses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Estofados Alpha")
	seed, err := LoadSeedFile(strings.NewReader(seedDoc))
	require.NoError(t, err)

	res, err := ApplySeed(context.Background(), db, tn.Company.ID, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Status, "tenant already has a status flow")
	assert.Equal(t, 1, res.Servicos)
}

func TestApplySeed_UnknownCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seed, err := LoadSeedFile(strings.NewReader("status:\n  - nome: Criada\n"))
	require.NoError(t, err)

	_, err = ApplySeed(context.Background(), db, uuid.New(), seed)
	assert.ErrorContains(t, err, "not found")

	_, err = ApplySeed(context.Background(), db, uuid.Nil, seed)
	assert.ErrorContains(t, err, "--company is required")
}
