package service_test

import (
	"testing"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/estofaria/os-api/internal/service"
	"github.com/estofaria/os-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClienteService_DocumentRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	other := testutil.CreateTenant(t, db, "Beta")
	svc := service.NewClienteService(repository.NewClienteRepository(db), repository.NewOrdemServicoRepository(db), zap.NewNop())

	req := &domain.CreateClienteRequest{
		Nome:          "Maria Souza",
		TipoDocumento: domain.TipoDocumentoCPF,
		Documento:     "529.982.247-25",
		Telefone:      "(11) 98765-4321",
		Estado:        "sp",
	}
	created, err := svc.Create(tn.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, "52998224725", created.Documento)
	assert.Equal(t, "529.982.247-25", created.DocumentoFormatado)
	assert.Equal(t, "11987654321", created.Telefone)
	assert.Equal(t, "SP", created.Estado)

	_, err = svc.Create(tn.Context(), req)
	assert.ErrorIs(t, err, service.ErrDocumentoInUse)

	_, err = svc.Create(other.Context(), req)
	assert.NoError(t, err, "another company may register the same documento")

	found, err := svc.FindByDocumento(tn.Context(), "52998224725")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.FindByDocumento(tn.Context(), "111.444.777-35")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bad := *req
	bad.Documento = "529.982.247-24"
	_, err = svc.Create(tn.Context(), &bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	cliente := domain.Cliente{BaseModel: domain.BaseModel{ID: created.ID}}
	testutil.CreateOrdem(t, db, tn, cliente, tn.Criada, "0001", "10")
	err = svc.Delete(tn.Context(), created.ID)
	assert.ErrorIs(t, err, service.ErrClienteHasOrdens)

	detail, err := svc.GetByID(tn.Context(), created.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Ordens, 1)

	_, err = svc.GetByID(other.Context(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatusConfigService_Rules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	svc := service.NewStatusConfigService(db, repository.NewStatusConfigRepository(db), zap.NewNop())
	ctx := tn.Context()

	pronta, err := svc.Create(ctx, &domain.CreateStatusRequest{Nome: "Pronta", Cor: "#3b82f6"})
	require.NoError(t, err)
	assert.Equal(t, 4, pronta.Ordem, "new statuses go to the end of the flow")

	_, err = svc.Create(ctx, &domain.CreateStatusRequest{Nome: "Desistência", Cor: "#000000", IsCancelamento: true})
	assert.ErrorIs(t, err, service.ErrCancelamentoExists)

	_, err = svc.Create(ctx, &domain.CreateStatusRequest{Nome: "X", Cor: "#000000", IsFinal: true, IsCancelamento: true})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.Delete(ctx, pronta.ID)
	require.NoError(t, err)

	cliente := testutil.CreateCliente(t, db, tn, "Maria", "529.982.247-25")
	testutil.CreateOrdem(t, db, tn, cliente, tn.EmProducao, "0001", "10")
	err = svc.Delete(ctx, tn.EmProducao.ID)
	assert.ErrorIs(t, err, service.ErrStatusInUse)

	reordered, err := svc.Reorder(ctx, []uuid.UUID{tn.EmProducao.ID, tn.Criada.ID})
	require.NoError(t, err)
	require.NotEmpty(t, reordered)
	assert.Equal(t, tn.EmProducao.ID, reordered[0].ID)

	_, err = svc.Reorder(ctx, []uuid.UUID{tn.Criada.ID, tn.Criada.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	toggled, err := svc.ToggleActive(ctx, tn.Cancelada.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Ativo)

	_, err = svc.Create(ctx, &domain.CreateStatusRequest{Nome: "Desistência", Cor: "#000000", IsCancelamento: true})
	require.NoError(t, err, "the old cancellation status is inactive now")

	_, err = svc.ToggleActive(ctx, tn.Cancelada.ID)
	assert.ErrorIs(t, err, service.ErrCancelamentoExists)
}

func TestStatusConfigService_FlagsLockedOnceUsed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	svc := service.NewStatusConfigService(db, repository.NewStatusConfigRepository(db), zap.NewNop())
	ctx := tn.Context()

	cliente := testutil.CreateCliente(t, db, tn, "Maria", "529.982.247-25")
	ordem := testutil.CreateOrdem(t, db, tn, cliente, tn.Finalizada, "0001", "100")
	testutil.CreateOrdem(t, db, tn, cliente, tn.EmProducao, "0002", "50")

	_, err := svc.Update(ctx, tn.Finalizada.ID, &domain.UpdateStatusRequest{Nome: "Finalizada", Cor: "#10b981"})
	assert.ErrorIs(t, err, service.ErrStatusFlagsInUse)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Update(ctx, tn.EmProducao.ID, &domain.UpdateStatusRequest{Nome: "Em Produção", Cor: "#f59e0b", IsCancelamento: true})
	assert.ErrorIs(t, err, service.ErrStatusFlagsInUse)

	var stored domain.StatusConfig
	require.NoError(t, db.First(&stored, "id = ?", tn.Finalizada.ID).Error)
	assert.True(t, stored.IsFinal, "the final flag of a used status is unchanged")

	var reloaded domain.OrdemServico
	require.NoError(t, db.First(&reloaded, "id = ?", ordem.ID).Error)
	assert.Equal(t, tn.Finalizada.ID, reloaded.StatusID)

	renamed, err := svc.Update(ctx, tn.Finalizada.ID, &domain.UpdateStatusRequest{Nome: "Entregue", Cor: "#10b981", IsFinal: true})
	require.NoError(t, err, "name and color may change while the flags stay")
	assert.Equal(t, "Entregue", renamed.Nome)
	assert.True(t, renamed.IsFinal)

	unused, err := svc.Update(ctx, tn.Criada.ID, &domain.UpdateStatusRequest{Nome: "Criada", Cor: "#3b82f6", IsFinal: true})
	require.NoError(t, err, "an unused status may change its flags")
	assert.True(t, unused.IsFinal)
}

func TestStatusConfigService_SeedDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	require.NoError(t, db.Where("company_id = ?", tn.Company.ID).Delete(&domain.StatusConfig{}).Error)
	svc := service.NewStatusConfigService(db, repository.NewStatusConfigRepository(db), zap.NewNop())

	require.NoError(t, svc.SeedDefaults(tn.Context()))
	require.NoError(t, svc.SeedDefaults(tn.Context()), "seeding twice is a no-op")

	statuses, err := svc.List(tn.Context())
	require.NoError(t, err)
	require.Len(t, statuses, len(service.DefaultStatusFlow()))
	assert.Equal(t, "Criada", statuses[0].Nome)
	assert.True(t, statuses[len(statuses)-1].IsCancelamento)
}

func TestNumeracaoService_NeverMovesBackwards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	svc := service.NewNumeracaoService(repository.NewNumeracaoRepository(db), testNumbering, zap.NewNop())

	current, err := svc.Get(tn.Context())
	require.NoError(t, err)
	assert.Equal(t, "OS-", current.Prefixo)
	assert.EqualValues(t, 1, current.ProximoNumero)
	assert.Equal(t, "OS-0001", current.Exemplo)

	updated, err := svc.Update(tn.Context(), &domain.UpdateNumeracaoRequest{Prefixo: "EST-", ProximoNumero: 500})
	require.NoError(t, err)
	assert.Equal(t, "EST-0500", updated.Exemplo)

	_, err = svc.Update(tn.Context(), &domain.UpdateNumeracaoRequest{Prefixo: "EST-", ProximoNumero: 10})
	assert.ErrorIs(t, err, service.ErrNumeracaoRegression)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Update(tn.Context(), &domain.UpdateNumeracaoRequest{ProximoNumero: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProfileService_KeepsOneActiveAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	svc := service.NewProfileService(db, repository.NewProfileRepository(db), repository.NewCompanyRepository(db), zap.NewNop())
	ctx := tn.Context()

	operador := domain.RoleOperador
	_, err := svc.UpdateAccess(ctx, tn.Admin.ID, &domain.UpdateProfileRequest{Role: &operador})
	assert.ErrorIs(t, err, service.ErrCannotRemoveLastAdmin)

	inativo := false
	_, err = svc.UpdateAccess(ctx, tn.Admin.ID, &domain.UpdateProfileRequest{Ativo: &inativo})
	assert.ErrorIs(t, err, service.ErrCannotRemoveLastAdmin)

	gerente := testutil.CreateProfile(t, db, tn, "Gerente", domain.RoleGerente)
	admin := domain.RoleAdmin
	promoted, err := svc.UpdateAccess(ctx, gerente.ID, &domain.UpdateProfileRequest{Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	demoted, err := svc.UpdateAccess(ctx, tn.Admin.ID, &domain.UpdateProfileRequest{Role: &operador})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperador, demoted.Role)

	me, err := svc.Me(tn.ContextAs(gerente.UserID, domain.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, gerente.ID, me.Profile.ID)
	assert.Equal(t, tn.Company.Nome, me.Company.Nome)

	profiles, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}

func TestCampoService_SelectNeedsOptions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	svc := service.NewCampoService(repository.NewCampoOSRepository(db), zap.NewNop())
	ctx := tn.Context()

	_, err := svc.Create(ctx, &domain.CreateCampoRequest{Nome: "Cor", Tipo: domain.CampoTipoSelect})
	assert.ErrorIs(t, err, domain.ErrValidation)

	cor, err := svc.Create(ctx, &domain.CreateCampoRequest{Nome: "Cor", Tipo: domain.CampoTipoSelect, OpcoesTexto: "preto, marrom ,, bege"})
	require.NoError(t, err)
	assert.Equal(t, []string{"preto", "marrom", "bege"}, cor.Opcoes)
	assert.Equal(t, 0, cor.Ordem)

	modelo, err := svc.Create(ctx, &domain.CreateCampoRequest{Nome: "Modelo", Tipo: domain.CampoTipoTexto, Opcoes: []string{"ignored"}})
	require.NoError(t, err)
	assert.Equal(t, 1, modelo.Ordem)
	assert.Empty(t, modelo.Opcoes)

	toggled, err := svc.ToggleActive(ctx, modelo.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Ativo)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCatalogService_CategoriaInUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Alpha")
	other := testutil.CreateTenant(t, db, "Beta")
	svc := service.NewCatalogService(
		repository.NewCatalogRepository[domain.Categoria](db),
		repository.NewCatalogRepository[domain.Servico](db),
		repository.NewCatalogRepository[domain.Produto](db),
		zap.NewNop(),
	)
	ctx := tn.Context()

	categoria, err := svc.CreateCategoria(ctx, &domain.CategoriaRequest{Nome: "Bancos"})
	require.NoError(t, err)

	servico, err := svc.CreateServico(ctx, &domain.CatalogItemRequest{Nome: "Reforma", CategoriaID: &categoria.ID, Preco: dec("120.555")})
	require.NoError(t, err)
	assert.True(t, servico.Preco.Equal(dec("120.56")))

	_, err = svc.CreateProduto(ctx, &domain.CatalogItemRequest{Nome: "Espuma", Preco: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateProduto(other.Context(), &domain.CatalogItemRequest{Nome: "Espuma", CategoriaID: &categoria.ID, Preco: dec("1")})
	assert.ErrorIs(t, err, domain.ErrValidation, "categoria of another company")

	err = svc.DeleteCategoria(ctx, categoria.ID)
	assert.ErrorIs(t, err, service.ErrCategoriaInUse)

	require.NoError(t, svc.DeleteServico(ctx, servico.ID))
	require.NoError(t, svc.DeleteCategoria(ctx, categoria.ID))

	servicos, err := svc.ListServicos(ctx, false, "")
	require.NoError(t, err)
	assert.Empty(t, servicos)
}
