package service

import (
	"context"
	"fmt"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/mapper"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProfileService handles the caller's identity and the company's members
type ProfileService struct {
	db          *gorm.DB
	profileRepo *repository.ProfileRepository
	companyRepo *repository.CompanyRepository
	logger      *zap.Logger
}

func NewProfileService(
	db *gorm.DB,
	profileRepo *repository.ProfileRepository,
	companyRepo *repository.CompanyRepository,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		db:          db,
		profileRepo: profileRepo,
		companyRepo: companyRepo,
		logger:      logger,
	}
}

// Me returns the caller's profile and company
func (s *ProfileService) Me(ctx context.Context) (*domain.MeDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok || userCtx.System {
		return nil, &domain.PermissionError{Action: "me requires a user session"}
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userCtx.UserID)
	if err != nil {
		return nil, notFound(err, "profile", userCtx.UserID)
	}
	company := profile.Company
	if company == nil {
		company, err = s.companyRepo.GetByID(ctx, profile.CompanyID)
		if err != nil {
			return nil, notFound(err, "company", profile.CompanyID)
		}
	}

	return &domain.MeDTO{
		Profile: mapper.ToProfileDTO(profile),
		Company: mapper.ToCompanyDTO(company),
	}, nil
}

// List returns the profiles of the caller's company
func (s *ProfileService) List(ctx context.Context) ([]domain.ProfileDTO, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	dtos := make([]domain.ProfileDTO, len(profiles))
	for i := range profiles {
		dtos[i] = mapper.ToProfileDTO(&profiles[i])
	}
	return dtos, nil
}

func hasOtherAdmin(admins []uuid.UUID, id uuid.UUID) bool {
	for _, a := range admins {
		if a != id {
			return true
		}
	}
	return false
}

// UpdateAccess changes a member's role or active flag. The company must keep at
// least one active admin.
func (s *ProfileService) UpdateAccess(ctx context.Context, id uuid.UUID, req *domain.UpdateProfileRequest) (*domain.ProfileDTO, error) {
	if req.Role != nil && !req.Role.IsValid() {
		return nil, domain.NewValidationError("role", "unknown role")
	}

	var profile *domain.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admins, err := s.profileRepo.LockActiveAdmins(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to lock admins: %w", err)
		}
		profile, err = s.profileRepo.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, "profile", id)
		}

		role, ativo := profile.Role, profile.Ativo
		if req.Role != nil {
			role = *req.Role
		}
		if req.Ativo != nil {
			ativo = *req.Ativo
		}

		losesAdmin := profile.Role == domain.RoleAdmin && profile.Ativo && (role != domain.RoleAdmin || !ativo)
		if losesAdmin && !hasOtherAdmin(admins, profile.ID) {
			return ErrCannotRemoveLastAdmin
		}

		if err := s.profileRepo.UpdateAccess(ctx, tx, id, role, ativo); err != nil {
			return err
		}
		profile.Role = role
		profile.Ativo = ativo
		return nil
	})
	if err != nil {
		return nil, wrapUnlessDomain(err, "update profile")
	}

	s.logger.Info("profile access updated",
		zap.String("profile_id", profile.ID.String()),
		zap.String("role", string(profile.Role)),
		zap.Bool("ativo", profile.Ativo))

	dto := mapper.ToProfileDTO(profile)
	return &dto, nil
}
