package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when an order lookup by ID finds nothing.
	ErrOrderNotFound = errors.New("order not found")

	// ErrUserNotFound is returned when the user service answers 404 for the
	// order's user.
	ErrUserNotFound = errors.New("user not found")

	// ErrProductNotFound is returned when the product service answers 404
	// for a requested item.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidRequest marks malformed input rejected before any remote
	// call is made.
	ErrInvalidRequest = errors.New("invalid request")
)

// InsufficientStockError is returned when a requested quantity exceeds the
// product's available stock during the pre-flight validation pass.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for '%s': requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// ExternalServiceError reports that a collaborator (user or product service)
// could not be reached. Calls are single-shot; there is no internal retry.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("the %s service is unavailable: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("the %s service is unavailable", e.Service)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// InvalidTransitionError reports a status change rejected by the state
// machine. From is empty when the request was rejected before the order
// was loaded (a transition back to PENDING is refused unconditionally).
type InvalidTransitionError struct {
	From   OrderStatus
	To     OrderStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("invalid transition to %s: %s", e.To, e.Reason)
	}
	return fmt.Sprintf("invalid transition from %s to %s: %s", e.From, e.To, e.Reason)
}

// IsNotFound reports whether the error is one of the not-found kinds, so the
// HTTP layer can answer 404 without inspecting each sentinel itself.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProductNotFound)
}
