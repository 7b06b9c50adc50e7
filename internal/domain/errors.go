package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required":  "This field is required",
	"email":     "Invalid email address",
	"max":       "Exceeds the maximum length",
	"min":       "Below the minimum length",
	"gte":       "Must be greater than or equal to the minimum",
	"gt":        "Must be greater than the minimum",
	"lte":       "Must be less than or equal to the maximum",
	"lt":        "Must be less than the maximum",
	"uuid":      "Invalid UUID",
	"oneof":     "Value is not allowed",
	"numeric":   "Must be numeric",
	"len":       "Invalid length",
	"cpf":       "Invalid CPF",
	"cnpj":      "Invalid CNPJ",
	"documento": "Invalid document number",
	"hexcolor":  "Must be a hex color such as #3b82f6",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed on " + tag
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// Error kinds. Every typed error below unwraps to exactly one of these, so callers
// can classify with errors.Is without knowing the concrete type.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrPermission = errors.New("permission denied")
)

// ValidationError reports bad input detected before any write
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing entity, or one that belongs to another tenant
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError builds a NotFoundError for an entity id
func NewNotFoundError(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// ConflictError reports a state conflict such as a duplicate key
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// PermissionError reports an action the caller's role may not perform
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return "permission denied: " + e.Action
}

func (e *PermissionError) Unwrap() error { return ErrPermission }

// InvalidStatusError reports an illegal status transition or an unknown status id
type InvalidStatusError struct {
	StatusID uuid.UUID
	Reason   string
}

func (e *InvalidStatusError) Error() string {
	if e.StatusID == uuid.Nil {
		return "invalid status: " + e.Reason
	}
	return fmt.Sprintf("invalid status %s: %s", e.StatusID, e.Reason)
}

func (e *InvalidStatusError) Unwrap() error { return ErrValidation }

// InvalidItemError reports a line item that cannot be aggregated
type InvalidItemError struct {
	Index  int
	Reason string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("invalid item %d: %s", e.Index, e.Reason)
}

func (e *InvalidItemError) Unwrap() error { return ErrValidation }
