package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProfileLookup resolves the profile bound to an identity-provider user.
// Implementations return gorm.ErrRecordNotFound when the user has no profile.
type ProfileLookup interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

// CompanyLookup resolves a company by id regardless of the request tenant
type CompanyLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	jwtValidator *JWTValidator
	apiKey       string
	profiles     ProfileLookup
	companies    CompanyLookup
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.Config, profiles ProfileLookup, companies CompanyLookup, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: NewJWTValidator(&cfg.JWT),
		apiKey:       cfg.ApiKey.Value,
		profiles:     profiles,
		companies:    companies,
		logger:       logger,
	}
}

// Authenticate accepts either an x-api-key with X-Company-ID or a Bearer token whose
// subject has an active profile in an active company
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			userCtx, status, msg := m.authenticateAPIKey(r, apiKey)
			if userCtx == nil {
				m.logger.Warn("api key authentication failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("reason", msg),
				)
				writeAuthError(w, status, msg)
				return
			}
			m.logger.Info("request authenticated",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("auth_type", "api_key"),
				zap.String("company_id", userCtx.CompanyID.String()),
				zap.Duration("auth_duration", time.Since(start)),
			)
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeAuthError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		identity, err := m.jwtValidator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			writeAuthError(w, http.StatusUnauthorized, err.Error())
			return
		}

		userCtx, status, msg := m.resolveProfile(r.Context(), identity)
		if userCtx == nil {
			m.logger.Warn("profile resolution failed",
				zap.String("user_id", identity.UserID.String()),
				zap.String("path", r.URL.Path),
				zap.String("reason", msg),
			)
			writeAuthError(w, status, msg)
			return
		}

		m.logger.Info("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("auth_type", "jwt"),
			zap.String("user_id", userCtx.UserID.String()),
			zap.String("company_id", userCtx.CompanyID.String()),
			zap.String("role", string(userCtx.Role)),
			zap.Duration("auth_duration", time.Since(start)),
		)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

func (m *Middleware) authenticateAPIKey(r *http.Request, key string) (*UserContext, int, string) {
	if !m.validateAPIKey(key) {
		return nil, http.StatusUnauthorized, "invalid api key"
	}
	companyID, err := uuid.Parse(r.Header.Get("X-Company-ID"))
	if err != nil {
		return nil, http.StatusBadRequest, "X-Company-ID header must be a valid uuid"
	}
	company, err := m.companies.GetByID(r.Context(), companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusForbidden, "company not found"
		}
		return nil, http.StatusInternalServerError, "failed to resolve company"
	}
	if !company.Ativo {
		return nil, http.StatusForbidden, "company is inactive"
	}
	return &UserContext{
		Nome:      "Sistema",
		Email:     "sistema@os-api",
		Role:      domain.RoleAdmin,
		CompanyID: company.ID,
		System:    true,
	}, 0, ""
}

func (m *Middleware) resolveProfile(ctx context.Context, identity *TokenIdentity) (*UserContext, int, string) {
	profile, err := m.profiles.GetByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusForbidden, "user has no profile"
		}
		return nil, http.StatusInternalServerError, "failed to resolve profile"
	}
	if !profile.Ativo {
		return nil, http.StatusForbidden, "profile is inactive"
	}
	if profile.Company != nil && !profile.Company.Ativo {
		return nil, http.StatusForbidden, "company is inactive"
	}
	email := profile.Email
	if email == "" {
		email = identity.Email
	}
	return &UserContext{
		UserID:    profile.UserID,
		Nome:      profile.Nome,
		Email:     email,
		Role:      profile.Role,
		CompanyID: profile.CompanyID,
	}, 0, ""
}

// RequireRole middleware ensures user has one of the given roles
func (m *Middleware) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusForbidden, "no user context")
				return
			}
			if !userCtx.HasAnyRole(roles...) {
				m.logger.Warn("role check failed",
					zap.String("user_id", userCtx.UserID.String()),
					zap.String("role", string(userCtx.Role)),
					zap.String("path", r.URL.Path),
				)
				writeAuthError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin middleware ensures user is a tenant admin
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(domain.RoleAdmin)(next)
}

// RequireAdminOrGerente middleware ensures user is an admin or a gerente
func (m *Middleware) RequireAdminOrGerente(next http.Handler) http.Handler {
	return m.RequireRole(domain.RoleAdmin, domain.RoleGerente)(next)
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	title := "Unauthorized"
	if status == http.StatusForbidden {
		title = "Forbidden"
	} else if status != http.StatusUnauthorized {
		title = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{Error: title, Message: msg})
}
