package auth

import (
	"context"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
)

// UserContext holds the authenticated user and the company they act for
type UserContext struct {
	UserID    uuid.UUID
	Nome      string
	Email     string
	Role      domain.Role
	CompanyID uuid.UUID
	// System is set for api-key callers that have no profile
	System bool
}

type contextKey string

const userContextKey contextKey = "userContext"
const companyFilterKey contextKey = "companyFilter"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.Role) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user may change tenant configuration
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// IsAdminOrGerente reports whether the user may manage orders of other users
func (u *UserContext) IsAdminOrGerente() bool {
	return u.HasAnyRole(domain.RoleAdmin, domain.RoleGerente)
}

// ActorID returns the user id to record on writes, nil for system callers
func (u *UserContext) ActorID() *uuid.UUID {
	if u.System || u.UserID == uuid.Nil {
		return nil
	}
	id := u.UserID
	return &id
}

// CompanyFilter is the tenant scope applied to repository queries
type CompanyFilter struct {
	CompanyID uuid.UUID
}

// WithCompanyFilter adds company filter to the context
func WithCompanyFilter(ctx context.Context, filter *CompanyFilter) context.Context {
	return context.WithValue(ctx, companyFilterKey, filter)
}

// CompanyFilterFromContext extracts company filter from the context
func CompanyFilterFromContext(ctx context.Context) (*CompanyFilter, bool) {
	filter, ok := ctx.Value(companyFilterKey).(*CompanyFilter)
	return filter, ok
}

// GetEffectiveCompanyFilter returns the tenant queries must be scoped to.
// The explicit filter set by middleware wins over the user's own company.
// Returns nil when the context carries no tenant at all.
func GetEffectiveCompanyFilter(ctx context.Context) *uuid.UUID {
	if filter, ok := CompanyFilterFromContext(ctx); ok && filter != nil && filter.CompanyID != uuid.Nil {
		id := filter.CompanyID
		return &id
	}
	if userCtx, ok := FromContext(ctx); ok && userCtx.CompanyID != uuid.Nil {
		id := userCtx.CompanyID
		return &id
	}
	return nil
}

// CompanyIDFromContext is GetEffectiveCompanyFilter for callers that need a tenant
func CompanyIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id := GetEffectiveCompanyFilter(ctx)
	if id == nil {
		return uuid.Nil, false
	}
	return *id, true
}

// ForCompany returns a context scoped to companyID as a system caller. Used by background jobs.
func ForCompany(ctx context.Context, companyID uuid.UUID) context.Context {
	ctx = WithUserContext(ctx, &UserContext{
		Nome:      "Sistema",
		Role:      domain.RoleAdmin,
		CompanyID: companyID,
		System:    true,
	})
	return WithCompanyFilter(ctx, &CompanyFilter{CompanyID: companyID})
}
