package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when input violates a domain rule
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrProductInactive is returned when an operation requires an active product
	ErrProductInactive = errors.New("product is inactive")

	// ErrInsufficientStock is returned when a stock reduction exceeds availability
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateSKU is returned when a SKU is already taken by another product
	ErrDuplicateSKU = errors.New("sku already exists")

	// ErrConflict is returned when there's a conflict (e.g., concurrent writes)
	ErrConflict = errors.New("conflict occurred")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)

// ValidationError reports the field that violated a domain rule. It matches
// ErrValidation under errors.Is so callers can branch on the kind without
// inspecting the concrete type.
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

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a missing entity by identifier.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InactiveProductError reports a mutation rejected because the product is
// deactivated.
type InactiveProductError struct {
	ID        string
	Operation string
}

func (e *InactiveProductError) Error() string {
	return fmt.Sprintf("product %q is inactive, cannot %s", e.ID, e.Operation)
}

func (e *InactiveProductError) Is(target error) bool { return target == ErrProductInactive }

// InsufficientStockError reports a stock reduction that exceeds what is on hand.
type InsufficientStockError struct {
	ID        string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %q has %d units in stock, requested %d", e.ID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// DuplicateSKUError reports a SKU collision detected on save.
type DuplicateSKUError struct {
	SKU string
}

func (e *DuplicateSKUError) Error() string {
	return fmt.Sprintf("sku %q already exists", e.SKU)
}

func (e *DuplicateSKUError) Is(target error) bool { return target == ErrDuplicateSKU }

// ConflictError reports a concurrent write detected by the storage adapter.
type ConflictError struct {
	Entity string
	ID     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q was modified concurrently", e.Entity, e.ID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
