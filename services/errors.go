package services

import (
	"errors"
	"fmt"

	"benefits-backend/models"
)

// Sentinel errors for the redemption engine. Handlers map these to HTTP
// statuses; use errors.Is to classify.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")
	ErrBenefitNotFound    = errors.New("benefit not found")
	ErrBenefitInactive    = errors.New("benefit is inactive")
	ErrInvalidPoints      = errors.New("points to spend must be greater than zero")
	ErrPointsExceedValue  = errors.New("points to spend exceed the benefit value")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidUsageWindow = errors.New("use-by date must be after the redemption date")
	ErrNotEligible        = errors.New("user is not eligible to redeem")
	ErrRedemptionNotFound = errors.New("redemption not found")
	ErrInvalidState       = errors.New("invalid redemption state")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrTimeout            = errors.New("operation timed out")
)

// NotEligibleError carries the policy's reason for denying a redemption.
type NotEligibleError struct {
	Reason string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("user is not eligible to redeem: %s", e.Reason)
}

func (e *NotEligibleError) Unwrap() error { return ErrNotEligible }

// InvalidTransitionError reports a rejected redemption state change.
type InvalidTransitionError struct {
	From models.RedemptionState
	To   models.RedemptionState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from '%s' to '%s'", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
