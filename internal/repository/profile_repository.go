package repository

import (
	"context"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByUserID resolves the profile of an identity-provider user with its company.
// It runs before a tenant is known and is therefore unscoped.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).
		Preload("Company").
		First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Where("id = ?", id))
	if err := query.First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Model(&domain.Profile{}))
	err := query.Order("nome ASC").Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) UpdateAccess(ctx context.Context, tx *gorm.DB, id uuid.UUID, role domain.Role, ativo bool) error {
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Model(&domain.Profile{}).Where("id = ?", id))
	result := query.Updates(map[string]interface{}{"role": role, "ativo": ativo})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LockActiveAdmins returns the ids of the tenant's active admins, holding a row lock
// on each until tx ends. Callers that demote an admin take it before reading the
// profile so concurrent demotions serialize.
func (r *ProfileRepository) LockActiveAdmins(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := ApplyCompanyFilter(ctx, conn(ctx, r.db, tx).Model(&domain.Profile{})).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("role = ? AND ativo = ?", domain.RoleAdmin, true).
		Order("id")
	err := query.Pluck("id", &ids).Error
	return ids, err
}

// NamesByUserIDs maps user ids of the tenant to profile names
func (r *ProfileRepository) NamesByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	var profiles []domain.Profile
	query := ApplyCompanyFilter(ctx, r.db.WithContext(ctx).Select("user_id", "nome").Where("user_id IN ?", userIDs))
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		names[p.UserID] = p.Nome
	}
	return names, nil
}
