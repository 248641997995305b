package ownership

import (
	"errors"
	"fmt"
)

// Business rejections. Each carries its own message so callers never see a
// bare "failed".
var (
	ErrValidation = errors.New("invalid request")

	ErrAlreadyOwned = errors.New("player is already owned")
	ErrOwnedBySelf  = fmt.Errorf("%w: you already have this player on your roster", ErrAlreadyOwned)
	ErrOwnedByOther = fmt.Errorf("%w: another manager owns this player", ErrAlreadyOwned)
	ErrOnWaivers    = fmt.Errorf("%w: player is on waivers and cannot be claimed yet", ErrAlreadyOwned)

	ErrNotOwned      = errors.New("player is not on a roster in this league")
	ErrNotYourPlayer = errors.New("player belongs to another manager")

	// ErrRaceLost means another claim for the same player committed first.
	// Callers may treat it as retryable.
	ErrRaceLost = errors.New("another manager just claimed this player")
)

// StoreError wraps an infrastructure failure from the ownership store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("ownership store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
