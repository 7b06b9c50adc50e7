package service

import (
	"errors"
	"fmt"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Common service errors. Each wraps one of the domain error kinds so handlers can
// classify them with errors.Is.
var (
	// ErrNoCompany is returned when the context carries no tenant
	ErrNoCompany = &domain.PermissionError{Action: "access without a company"}

	// ErrNoInitialStatus is returned when creating an order for a tenant without an initial status
	ErrNoInitialStatus = &domain.InvalidStatusError{Reason: "no initial status configured"}

	// ErrDocumentoInUse is returned when another cliente of the tenant has the same document
	ErrDocumentoInUse = &domain.ConflictError{Message: "documento already registered for another cliente"}

	// ErrClienteHasOrdens is returned when deleting a cliente that has orders
	ErrClienteHasOrdens = &domain.ConflictError{Message: "cliente has orders and cannot be deleted"}

	// ErrStatusInUse is returned when deleting a status referenced by orders or history
	ErrStatusInUse = &domain.ConflictError{Message: "status is in use; deactivate it instead"}

	// ErrStatusFlagsInUse is returned when flipping is_final or is_cancelamento on a status orders have used
	ErrStatusFlagsInUse = &domain.ConflictError{Message: "status is in use; its final and cancellation flags cannot change"}

	// ErrCancelamentoExists is returned when a second active cancellation status would exist
	ErrCancelamentoExists = &domain.ConflictError{Message: "an active cancellation status already exists"}

	// ErrCategoriaInUse is returned when deleting a categoria referenced by catalog entries
	ErrCategoriaInUse = &domain.ConflictError{Message: "categoria is in use"}

	// ErrNumeracaoRegression is returned when proximo_numero would reissue a number
	ErrNumeracaoRegression = &domain.ConflictError{Message: "proximo_numero cannot be lowered below the current value"}

	// ErrCannotRemoveLastAdmin is returned when demoting or deactivating the last active admin
	ErrCannotRemoveLastAdmin = &domain.ConflictError{Message: "cannot remove the last admin"}

	// ErrPagamentoOnCancelled is returned when recording a payment on a cancelled order
	ErrPagamentoOnCancelled = &domain.ConflictError{Message: "cannot record payments on a cancelled order"}
)

// notFound converts a store miss into a NotFoundError and wraps anything else
func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFoundError(entity, id)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

// conflictOnDuplicate maps a unique-key violation to a ConflictError
func conflictOnDuplicate(err error, conflict error, action string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// wrapUnlessDomain passes typed domain errors through and wraps store failures
func wrapUnlessDomain(err error, action string) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	return conflictOnDuplicate(err, &domain.ConflictError{Message: action + ": duplicate"}, action)
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrPermission)
}
