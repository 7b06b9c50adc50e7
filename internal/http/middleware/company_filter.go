package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/domain"
	"go.uber.org/zap"
)

// CompanyFilterMiddleware pins every authenticated request to exactly one company.
// Users are bound to the company of their profile; api-key callers to the
// X-Company-ID they were authenticated with. Requests that carry a different
// company_id query parameter are rejected instead of silently rescoped.
type CompanyFilterMiddleware struct {
	logger *zap.Logger
}

// NewCompanyFilterMiddleware creates a new company filter middleware
func NewCompanyFilterMiddleware(logger *zap.Logger) *CompanyFilterMiddleware {
	return &CompanyFilterMiddleware{
		logger: logger,
	}
}

// Filter is the middleware handler that sets the effective company filter in context
func (m *CompanyFilterMiddleware) Filter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := auth.FromContext(r.Context())
		if !ok {
			// Authentication middleware should have already rejected the request
			next.ServeHTTP(w, r)
			return
		}

		if requested := r.URL.Query().Get("company_id"); requested != "" && requested != userCtx.CompanyID.String() {
			m.logger.Warn("user attempted to access another company",
				zap.String("user_id", userCtx.UserID.String()),
				zap.String("user_company", userCtx.CompanyID.String()),
				zap.String("requested_company", requested),
			)
			forbidden(w, "Access denied: you cannot access data for this company")
			return
		}

		ctx := auth.WithCompanyFilter(r.Context(), &auth.CompanyFilter{CompanyID: userCtx.CompanyID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func forbidden(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   domain.ErrorTypeForbidden,
		Title:  "Forbidden",
		Status: http.StatusForbidden,
		Detail: detail,
	})
}
