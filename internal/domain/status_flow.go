package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrOrdemFinalizada is returned when cancelling an order that already reached a final status
	ErrOrdemFinalizada = &ConflictError{Message: "order is finalized and cannot be cancelled"}

	// ErrOrdemCancelada is returned when changing an order that was cancelled
	ErrOrdemCancelada = &ConflictError{Message: "order is cancelled"}

	// ErrOrdemEncerrada is returned when editing items or header fields of a terminal order
	ErrOrdemEncerrada = &ConflictError{Message: "order is closed for edits"}
)

// SortStatuses orders statuses by Ordem, breaking ties by creation time
func SortStatuses(statuses []StatusConfig) {
	sort.SliceStable(statuses, func(i, j int) bool {
		if statuses[i].Ordem != statuses[j].Ordem {
			return statuses[i].Ordem < statuses[j].Ordem
		}
		return statuses[i].CreatedAt.Before(statuses[j].CreatedAt)
	})
}

// InitialStatus returns the active status with the lowest Ordem that is neither
// final nor a cancellation. ok is false when the tenant has none configured.
func InitialStatus(statuses []StatusConfig) (status *StatusConfig, ok bool) {
	for i := range statuses {
		s := &statuses[i]
		if !s.Ativo || s.IsFinal || s.IsCancelamento {
			continue
		}
		if status == nil || s.Ordem < status.Ordem ||
			(s.Ordem == status.Ordem && s.CreatedAt.Before(status.CreatedAt)) {
			status = s
		}
	}
	return status, status != nil
}

// CancellationStatus returns the tenant's active cancellation status
func CancellationStatus(statuses []StatusConfig) (*StatusConfig, bool) {
	for i := range statuses {
		if statuses[i].Ativo && statuses[i].IsCancelamento {
			return &statuses[i], true
		}
	}
	return nil, false
}

// NextStatus returns the active non-cancellation status that follows current in
// Ordem. It is a suggestion for the UI; Advance accepts any active status.
func NextStatus(statuses []StatusConfig, current *StatusConfig) (*StatusConfig, bool) {
	if current == nil || current.IsTerminal() {
		return nil, false
	}
	var next *StatusConfig
	for i := range statuses {
		s := &statuses[i]
		if !s.Ativo || s.IsCancelamento || s.ID == current.ID || s.Ordem <= current.Ordem {
			continue
		}
		if next == nil || s.Ordem < next.Ordem {
			next = s
		}
	}
	return next, next != nil
}

// ValidateTransition checks that an order of companyID currently in current may move to target.
// Any active, non-cancellation status of the same company is a legal target; orders in a
// terminal status cannot move.
func ValidateTransition(companyID uuid.UUID, current, target *StatusConfig) error {
	if target == nil {
		return &InvalidStatusError{Reason: "status not found"}
	}
	if target.CompanyID != companyID {
		return &InvalidStatusError{StatusID: target.ID, Reason: "status belongs to another company"}
	}
	if !target.Ativo {
		return &InvalidStatusError{StatusID: target.ID, Reason: "status is inactive"}
	}
	if target.IsCancelamento {
		return &InvalidStatusError{StatusID: target.ID, Reason: "cancellation must go through cancel"}
	}
	if current == nil {
		return nil
	}
	if current.IsTerminal() {
		return &InvalidStatusError{StatusID: current.ID, Reason: "order is in a terminal status"}
	}
	if current.ID == target.ID {
		return &InvalidStatusError{StatusID: target.ID, Reason: "order is already in this status"}
	}
	return nil
}

// ValidateCancel checks that an order in current may be moved to cancel
func ValidateCancel(current, cancel *StatusConfig) error {
	if cancel == nil {
		return &InvalidStatusError{Reason: "no cancellation status configured"}
	}
	if current == nil {
		return nil
	}
	if current.IsCancelamento {
		return ErrOrdemCancelada
	}
	if current.IsFinal {
		return ErrOrdemFinalizada
	}
	return nil
}

// ApplyTransition moves order to target and returns the ledger row recording it.
// data_finalizacao is stamped when target is final.
func ApplyTransition(order *OrdemServico, target *StatusConfig, actorID *uuid.UUID, now time.Time) HistoricoStatus {
	order.StatusID = target.ID
	order.Status = target
	if target.IsFinal {
		t := now
		order.DataFinalizacao = &t
	}
	return HistoricoStatus{
		CompanyID:      order.CompanyID,
		OrdemServicoID: order.ID,
		StatusID:       target.ID,
		UsuarioID:      actorID,
		DataHora:       now,
	}
}

// IsEditable reports whether the order's header and items may still change
func IsEditable(current *StatusConfig) bool {
	return current == nil || !current.IsTerminal()
}
