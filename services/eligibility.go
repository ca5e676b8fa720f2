package services

import (
	"context"
	"fmt"
)

// EligibilityPolicy gates redemptions on data that lives outside the points
// schema. The engine treats the answer as authoritative and never caches it.
// A denial must wrap ErrNotEligible; any other error is infrastructure.
type EligibilityPolicy interface {
	CheckEligibility(ctx context.Context, userID int) error
}

// AccruedLeaveSource reports the accrued vacation days for an employee,
// typically from the HR datawarehouse.
type AccruedLeaveSource interface {
	AccruedLeaveDays(ctx context.Context, userID int) (int, error)
}

// AccruedLeavePolicy denies redemptions for employees whose accrued vacation
// days exceed MaxDays. The ceiling is configuration, not engine code.
type AccruedLeavePolicy struct {
	Source  AccruedLeaveSource
	MaxDays int
}

func (p *AccruedLeavePolicy) CheckEligibility(ctx context.Context, userID int) error {
	days, err := p.Source.AccruedLeaveDays(ctx, userID)
	if err != nil {
		return fmt.Errorf("accrued leave lookup for user %d: %w", userID, err)
	}
	if days > p.MaxDays {
		return &NotEligibleError{
			Reason: fmt.Sprintf("%d accrued vacation days exceed the %d day ceiling", days, p.MaxDays),
		}
	}
	return nil
}

// StaticLeaveSource returns a fixed number of accrued days. Used when no
// datawarehouse connection is configured.
type StaticLeaveSource struct {
	Days int
}

func (s StaticLeaveSource) AccruedLeaveDays(ctx context.Context, userID int) (int, error) {
	return s.Days, nil
}
