// Package testutil builds throwaway databases and tenant fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/database"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// A single connection is used so every statement sees the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), &config.DatabaseConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Tenant is a company with one admin profile and the default status flow
type Tenant struct {
	Company    domain.Company
	Admin      domain.Profile
	Criada     domain.StatusConfig
	EmProducao domain.StatusConfig
	Finalizada domain.StatusConfig
	Cancelada  domain.StatusConfig
}

// Statuses returns the tenant's flow in ordinal order
func (tn *Tenant) Statuses() []domain.StatusConfig {
	return []domain.StatusConfig{tn.Criada, tn.EmProducao, tn.Finalizada, tn.Cancelada}
}

// Context returns a request context authenticated as the tenant admin
func (tn *Tenant) Context() context.Context {
	return tn.ContextAs(tn.Admin.UserID, domain.RoleAdmin)
}

// ContextAs returns a context for userID acting in the tenant with role
func (tn *Tenant) ContextAs(userID uuid.UUID, role domain.Role) context.Context {
	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:    userID,
		Nome:      "Teste",
		Role:      role,
		CompanyID: tn.Company.ID,
	})
	return auth.WithCompanyFilter(ctx, &auth.CompanyFilter{CompanyID: tn.Company.ID})
}

// CreateTenant inserts a company, its admin and the statuses
// Criada(0), Em Produção(1), Finalizada(2, final) and Cancelada(3, cancellation)
func CreateTenant(t *testing.T, db *gorm.DB, nome string) *Tenant {
	t.Helper()
	tn := &Tenant{Company: domain.Company{Nome: nome, Plano: "basico", Ativo: true}}
	require.NoError(t, db.Create(&tn.Company).Error)

	tn.Admin = domain.Profile{
		UserID:    uuid.New(),
		CompanyID: tn.Company.ID,
		Nome:      "Admin " + nome,
		Email:     "admin@" + tn.Company.ID.String()[:8] + ".test",
		Role:      domain.RoleAdmin,
		Ativo:     true,
	}
	require.NoError(t, db.Omit("Company").Create(&tn.Admin).Error)

	mk := func(nomeStatus, cor string, ordem int, final, cancel bool) domain.StatusConfig {
		s := domain.StatusConfig{
			CompanyID:      tn.Company.ID,
			Nome:           nomeStatus,
			Cor:            cor,
			Ordem:          ordem,
			Ativo:          true,
			IsFinal:        final,
			IsCancelamento: cancel,
		}
		require.NoError(t, db.Create(&s).Error)
		return s
	}
	tn.Criada = mk("Criada", "#3b82f6", 0, false, false)
	tn.EmProducao = mk("Em Produção", "#f59e0b", 1, false, false)
	tn.Finalizada = mk("Finalizada", "#10b981", 2, true, false)
	tn.Cancelada = mk("Cancelada", "#ef4444", 3, false, true)
	return tn
}

// CreateProfile adds a profile with role to the tenant
func CreateProfile(t *testing.T, db *gorm.DB, tn *Tenant, nome string, role domain.Role) domain.Profile {
	t.Helper()
	p := domain.Profile{
		UserID:    uuid.New(),
		CompanyID: tn.Company.ID,
		Nome:      nome,
		Email:     uuid.NewString()[:8] + "@example.com",
		Role:      role,
		Ativo:     true,
	}
	require.NoError(t, db.Omit("Company").Create(&p).Error)
	return p
}

// CreateCliente inserts a cliente with a valid CPF
func CreateCliente(t *testing.T, db *gorm.DB, tn *Tenant, nome, cpf string) domain.Cliente {
	t.Helper()
	c := domain.Cliente{
		CompanyID:     tn.Company.ID,
		Nome:          nome,
		TipoDocumento: domain.TipoDocumentoCPF,
		Documento:     domain.OnlyDigits(cpf),
		Telefone:      "11987654321",
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// CreateOrdem inserts an order directly, bypassing numbering and the ledger
func CreateOrdem(t *testing.T, db *gorm.DB, tn *Tenant, cliente domain.Cliente, status domain.StatusConfig, numero string, total string) domain.OrdemServico {
	t.Helper()
	o := domain.OrdemServico{
		CompanyID:    tn.Company.ID,
		NumeroOS:     numero,
		ClienteID:    cliente.ID,
		StatusID:     status.ID,
		DataAbertura: time.Now().UTC(),
		ValorTotal:   decimal.RequireFromString(total),
	}
	require.NoError(t, db.Omit("Cliente", "Status", "Itens", "Pagamentos", "Valores").Create(&o).Error)
	return o
}
