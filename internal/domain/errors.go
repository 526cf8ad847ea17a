package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientBalance is returned when a balance check or reservation
	// fails at order creation.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAssetNotFound is returned when a balance row expected to exist is
	// missing. On release or settle this signals a data-integrity violation
	// rather than a normal miss.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrOrderNotFound is returned when the referenced order id does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidAmount is returned for a non-positive balance top-up amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidCredentials is returned on a failed signin.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameTaken is returned when signing up with an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned when signing up with an existing email.
	ErrEmailTaken = errors.New("email already in use")

	// ErrAccessDenied is returned when the caller may not act on the target
	// customer's records.
	ErrAccessDenied = errors.New("access denied")
)

// InvalidStateTransitionError is returned when canceling or matching an
// order that is no longer PENDING. It carries the order's current status
// for diagnostics.
type InvalidStateTransitionError struct {
	OrderID uint
	Status  OrderStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("order %d: only PENDING orders can transition, current status: %s", e.OrderID, e.Status)
}

// InvariantError reports a balance row that violates 0 <= usable <= size.
type InvariantError struct {
	Asset  *Asset
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("balance invariant violated for customer %d asset %s: %s (size=%s usable=%s)",
		e.Asset.CustomerID, e.Asset.AssetName, e.Reason, e.Asset.Size, e.Asset.UsableSize)
}
