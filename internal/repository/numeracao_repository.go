package repository

import (
	"context"
	"fmt"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumeracaoRepository owns the per-tenant order counter
type NumeracaoRepository struct {
	db *gorm.DB
}

func NewNumeracaoRepository(db *gorm.DB) *NumeracaoRepository {
	return &NumeracaoRepository{db: db}
}

// ensure creates the counter row for the company if it is missing
func (r *NumeracaoRepository) ensure(db *gorm.DB, companyID uuid.UUID, defaultPrefix string) error {
	row := domain.NumeracaoOS{CompanyID: companyID, Prefixo: defaultPrefix, ProximoNumero: 1}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

// lock reads the counter row holding a row lock until tx ends
func (r *NumeracaoRepository) lock(db *gorm.DB, companyID uuid.UUID) (*domain.NumeracaoOS, error) {
	var row domain.NumeracaoOS
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ?", companyID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// NextNumber reserves the next order number of the company. It must run inside the
// transaction that inserts the order so the counter and the order commit together.
// Concurrent callers for the same company serialize on the counter row lock.
func (r *NumeracaoRepository) NextNumber(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, defaultPrefix string) (string, int64, error) {
	if tx == nil {
		return "", 0, fmt.Errorf("next number requires a transaction")
	}
	db := tx.WithContext(ctx)
	if err := r.ensure(db, companyID, defaultPrefix); err != nil {
		return "", 0, fmt.Errorf("failed to create order counter: %w", err)
	}
	row, err := r.lock(db, companyID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to lock order counter: %w", err)
	}

	issued := row.ProximoNumero
	result := db.Model(&domain.NumeracaoOS{}).
		Where("id = ? AND proximo_numero = ?", row.ID, issued).
		Updates(map[string]interface{}{"proximo_numero": issued + 1})
	if result.Error != nil {
		return "", 0, fmt.Errorf("failed to advance order counter: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return "", 0, fmt.Errorf("order counter changed concurrently")
	}
	return row.Prefixo, issued, nil
}

// Get returns the tenant's counter, creating it with defaults on first access
func (r *NumeracaoRepository) Get(ctx context.Context, companyID uuid.UUID, defaultPrefix string) (*domain.NumeracaoOS, error) {
	db := r.db.WithContext(ctx)
	if err := r.ensure(db, companyID, defaultPrefix); err != nil {
		return nil, err
	}
	var row domain.NumeracaoOS
	if err := db.Where("company_id = ?", companyID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Update changes prefix and next number under the same lock NextNumber takes.
// validate sees the locked current row and may veto the change.
func (r *NumeracaoRepository) Update(ctx context.Context, companyID uuid.UUID, defaultPrefix, prefixo string, proximo int64, validate func(current *domain.NumeracaoOS) error) (*domain.NumeracaoOS, error) {
	var out *domain.NumeracaoOS
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensure(tx, companyID, defaultPrefix); err != nil {
			return err
		}
		row, err := r.lock(tx, companyID)
		if err != nil {
			return err
		}
		if validate != nil {
			if err := validate(row); err != nil {
				return err
			}
		}
		row.Prefixo = prefixo
		row.ProximoNumero = proximo
		if err := tx.Model(row).Updates(map[string]interface{}{"prefixo": prefixo, "proximo_numero": proximo}).Error; err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
