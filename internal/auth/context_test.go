package auth_test

import (
	"context"
	"testing"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext_Roles(t *testing.T) {
	tests := []struct {
		role             domain.Role
		isAdmin          bool
		isAdminOrGerente bool
	}{
		{domain.RoleAdmin, true, true},
		{domain.RoleGerente, false, true},
		{domain.RoleOperador, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			u := &auth.UserContext{Role: tt.role}
			assert.Equal(t, tt.isAdmin, u.IsAdmin())
			assert.Equal(t, tt.isAdminOrGerente, u.IsAdminOrGerente())
			assert.True(t, u.HasAnyRole(domain.RoleOperador, tt.role))
		})
	}
}

func TestUserContext_ActorID(t *testing.T) {
	id := uuid.New()
	got := (&auth.UserContext{UserID: id}).ActorID()
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	assert.Nil(t, (&auth.UserContext{UserID: id, System: true}).ActorID())
	assert.Nil(t, (&auth.UserContext{}).ActorID())
}

func TestWithUserContext_and_FromContext(t *testing.T) {
	user := &auth.UserContext{UserID: uuid.New(), Nome: "Carla", Role: domain.RoleOperador}
	got, ok := auth.FromContext(auth.WithUserContext(context.Background(), user))
	require.True(t, ok)
	assert.Same(t, user, got)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestCompanyIDFromContext(t *testing.T) {
	own, other := uuid.New(), uuid.New()

	_, ok := auth.CompanyIDFromContext(context.Background())
	assert.False(t, ok, "no tenant without user or filter")

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{CompanyID: own})
	id, ok := auth.CompanyIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, own, id)

	ctx = auth.WithCompanyFilter(ctx, &auth.CompanyFilter{CompanyID: other})
	id, ok = auth.CompanyIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, other, id, "explicit filter wins")
}

func TestForCompany(t *testing.T) {
	companyID := uuid.New()
	ctx := auth.ForCompany(context.Background(), companyID)

	user, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.True(t, user.System)
	assert.Nil(t, user.ActorID())

	id, ok := auth.CompanyIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, companyID, id)
}
