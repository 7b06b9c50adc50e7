package repository_test

import (
	"context"
	"testing"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/estofaria/os-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestApplyCompanyFilter_WithFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	companyID := uuid.New()
	ctx := auth.WithCompanyFilter(context.Background(), &auth.CompanyFilter{CompanyID: companyID})

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return repository.ApplyCompanyFilter(ctx, tx.Model(&domain.Cliente{})).Find(&[]domain.Cliente{})
	})
	assert.Contains(t, sql, "company_id")
	assert.Contains(t, sql, companyID.String())
}

func TestApplyCompanyFilter_NoTenantMatchesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	testutil.CreateCliente(t, db, tn, "Maria", "529.982.247-25")

	var clientes []domain.Cliente
	err := repository.ApplyCompanyFilter(context.Background(), db.Model(&domain.Cliente{})).Find(&clientes).Error
	require.NoError(t, err)
	assert.Empty(t, clientes)

	err = repository.ApplyCompanyFilter(tn.Context(), db.Model(&domain.Cliente{})).Find(&clientes).Error
	require.NoError(t, err)
	assert.Len(t, clientes, 1)
}

func TestCrossTenantLookupIsNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	alpha := testutil.CreateTenant(t, db, "Alpha")
	beta := testutil.CreateTenant(t, db, "Beta")
	cliente := testutil.CreateCliente(t, db, alpha, "Maria", "529.982.247-25")
	ordem := testutil.CreateOrdem(t, db, alpha, cliente, alpha.Criada, "0001", "10")

	clientes := repository.NewClienteRepository(db)
	_, err := clientes.GetByID(beta.Context(), nil, cliente.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	ordens := repository.NewOrdemServicoRepository(db)
	_, err = ordens.GetByID(beta.Context(), nil, ordem.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	statuses := repository.NewStatusConfigRepository(db)
	_, err = statuses.GetByID(beta.Context(), nil, alpha.Criada.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := ordens.GetByID(alpha.Context(), nil, ordem.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Status)
	assert.Equal(t, "Criada", got.Status.Nome)
}

func TestNormalizePage(t *testing.T) {
	p, s := repository.NormalizePage(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, repository.DefaultPageSize, s)

	_, s = repository.NormalizePage(3, 10000)
	assert.Equal(t, repository.MaxPageSize, s)
}

func TestBuildOrderClause(t *testing.T) {
	fields := map[string]string{"nome": "clientes.nome"}
	assert.Equal(t, "clientes.nome ASC", repository.BuildOrderClause(repository.SortConfig{Field: "nome", Order: repository.SortOrderAsc}, fields, "created_at"))
	assert.Equal(t, "created_at DESC", repository.BuildOrderClause(repository.SortConfig{Field: "drop table"}, fields, "created_at"))
}
