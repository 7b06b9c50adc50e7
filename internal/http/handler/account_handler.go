package handler

import (
	"net/http"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/service"
	"go.uber.org/zap"
)

// AccountHandler serves the caller's own profile and the company's user list
type AccountHandler struct {
	profileService *service.ProfileService
	logger         *zap.Logger
}

func NewAccountHandler(profileService *service.ProfileService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// Me godoc
// @Summary Get current user
// @Description Returns the caller's profile and company
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.MeDTO
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /me [get]
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if userCtx.System {
		respondWithError(w, http.StatusNotFound, "API key callers have no profile")
		return
	}

	me, err := h.profileService.Me(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "load profile")
		return
	}

	respondJSON(w, http.StatusOK, me)
}

// ListProfiles godoc
// @Summary List company users
// @Tags Profiles
// @Produce json
// @Success 200 {array} domain.ProfileDTO
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /profiles [get]
func (h *AccountHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profileService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list profiles")
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

// UpdateProfile godoc
// @Summary Change a user's role or active flag
// @Description The last active admin of a company cannot be demoted or deactivated
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Param request body domain.UpdateProfileRequest true "Access changes"
// @Success 200 {object} domain.ProfileDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /profiles/{id} [patch]
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "profile")
	if !ok {
		return
	}

	var req domain.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.profileService.UpdateAccess(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
