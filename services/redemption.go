package services

import (
	"context"
	"errors"
	"time"

	"benefits-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DefaultPageSize is used when the caller does not specify a page size.
	DefaultPageSize = 10
	// MaxPageSize is the hard cap on page size.
	MaxPageSize = 100
	// DefaultTimeout bounds every engine operation.
	DefaultTimeout = 30 * time.Second
)

// RedemptionService enforces the points-redemption business rules: balance
// validation, atomic debit/credit, and the redemption state machine. All
// mutations of the user balance and the redemption row happen inside a single
// transaction per operation.
type RedemptionService struct {
	DB      *gorm.DB
	Policy  EligibilityPolicy // optional; nil disables the eligibility rule
	Timeout time.Duration
}

func NewRedemptionService(db *gorm.DB, policy EligibilityPolicy) *RedemptionService {
	return &RedemptionService{
		DB:      db,
		Policy:  policy,
		Timeout: DefaultTimeout,
	}
}

// RedeemInput is a request to exchange points for a benefit.
type RedeemInput struct {
	UserID     int
	BenefitID  uuid.UUID
	Points     int
	RedeemedAt time.Time
	UseBy      time.Time
	Notes      string
}

// ListFilter narrows ListAll results. Nil/empty fields are ignored.
type ListFilter struct {
	UserID    *int
	BenefitID *uuid.UUID
	State     models.RedemptionState
}

func (s *RedemptionService) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// wrapInfra maps context expiry onto ErrTimeout so callers can distinguish
// transient failures from domain rejections.
func wrapInfra(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

// Redeem validates and executes a point-for-benefit exchange. On success the
// redemption row insert and the balance debit are committed atomically, and
// the user's remaining points are returned alongside the new redemption.
//
// Preconditions are checked in a fixed order, each with its own error: user
// active, benefit active, points positive, points within the benefit value,
// balance sufficient, usage window valid, eligibility policy satisfied. The
// eligibility check runs before the write transaction opens so no lock is
// held across the external call.
func (s *RedemptionService) Redeem(ctx context.Context, in RedeemInput) (*models.Redemption, int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var user models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", in.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, wrapInfra(err)
	}
	if !user.IsActive {
		return nil, 0, ErrUserInactive
	}

	var benefit models.Benefit
	if err := s.DB.WithContext(ctx).Where("id = ?", in.BenefitID).First(&benefit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrBenefitNotFound
		}
		return nil, 0, wrapInfra(err)
	}
	if !benefit.IsActive {
		return nil, 0, ErrBenefitInactive
	}

	if in.Points <= 0 {
		return nil, 0, ErrInvalidPoints
	}
	if in.Points > benefit.Value {
		return nil, 0, ErrPointsExceedValue
	}
	if user.Points < in.Points {
		return nil, 0, ErrInsufficientPoints
	}

	redeemedAt := in.RedeemedAt.UTC()
	useBy := in.UseBy.UTC()
	if !useBy.After(redeemedAt) {
		return nil, 0, ErrInvalidUsageWindow
	}

	if s.Policy != nil {
		if err := s.Policy.CheckEligibility(ctx, in.UserID); err != nil {
			return nil, 0, wrapInfra(err)
		}
	}

	redemption := models.Redemption{
		ID:          uuid.New(),
		UserID:      in.UserID,
		BenefitID:   in.BenefitID,
		PointsSpent: in.Points,
		RedeemedAt:  redeemedAt,
		UseBy:       useBy,
		State:       models.RedemptionActive,
		Notes:       in.Notes,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional decrement serializes concurrent redemptions per user:
		// two callers racing on a stale balance cannot both pass, because
		// only updates that leave the balance non-negative touch a row.
		res := tx.Model(&models.User{}).
			Where("user_id = ? AND points >= ? AND is_active = ?", in.UserID, in.Points, true).
			UpdateColumn("points", gorm.Expr("points - ?", in.Points))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientPoints
		}

		return tx.Create(&redemption).Error
	})
	if err != nil {
		return nil, 0, wrapInfra(err)
	}

	remaining, err := s.currentPoints(ctx, in.UserID)
	if err != nil {
		return nil, 0, wrapInfra(err)
	}

	s.DB.WithContext(ctx).Preload("Benefit").First(&redemption, redemption.ID)
	return &redemption, remaining, nil
}

// ChangeState transitions a redemption to a new state. Cancelling an ACTIVE
// redemption credits the spent points back to the user; the credit and the
// state write commit atomically. Terminal states reject every transition. The
// current state is re-read under a row lock inside the transaction, so two
// concurrent calls cannot both succeed.
func (s *RedemptionService) ChangeState(ctx context.Context, id uuid.UUID, newState models.RedemptionState, notes *string) (*models.Redemption, int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if !models.IsValidRedemptionState(newState) {
		return nil, 0, ErrInvalidState
	}

	var redemption models.Redemption
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&redemption).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRedemptionNotFound
			}
			return err
		}

		if !models.IsValidRedemptionTransition(redemption.State, newState) {
			return &InvalidTransitionError{From: redemption.State, To: newState}
		}

		if newState == models.RedemptionCancelled {
			res := tx.Model(&models.User{}).
				Where("user_id = ?", redemption.UserID).
				UpdateColumn("points", gorm.Expr("points + ?", redemption.PointsSpent))
			if res.Error != nil {
				return res.Error
			}
		}

		updates := map[string]interface{}{"state": newState}
		if notes != nil {
			updates["notes"] = *notes
		}
		return tx.Model(&redemption).Updates(updates).Error
	})
	if err != nil {
		return nil, 0, wrapInfra(err)
	}

	remaining, err := s.currentPoints(ctx, redemption.UserID)
	if err != nil {
		return nil, 0, wrapInfra(err)
	}

	s.DB.WithContext(ctx).Preload("Benefit").First(&redemption, redemption.ID)
	return &redemption, remaining, nil
}

// GetByID returns a redemption and the owning user's current point balance.
func (s *RedemptionService) GetByID(ctx context.Context, id uuid.UUID) (*models.Redemption, int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var redemption models.Redemption
	if err := s.DB.WithContext(ctx).Preload("Benefit").Where("id = ?", id).First(&redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrRedemptionNotFound
		}
		return nil, 0, wrapInfra(err)
	}

	// Balance is informational here; a missing user reads as zero.
	remaining, _ := s.currentPoints(ctx, redemption.UserID)
	return &redemption, remaining, nil
}

// ListByUser returns a user's redemptions ordered by redemption date
// descending, with the total count for pagination.
func (s *RedemptionService) ListByUser(ctx context.Context, userID int, state models.RedemptionState, page, size int) ([]models.Redemption, int64, error) {
	return s.list(ctx, ListFilter{UserID: &userID, State: state}, page, size)
}

// ListAll returns redemptions matching the filter, for administrative use.
func (s *RedemptionService) ListAll(ctx context.Context, filter ListFilter, page, size int) ([]models.Redemption, int64, error) {
	return s.list(ctx, filter, page, size)
}

func (s *RedemptionService) list(ctx context.Context, filter ListFilter, page, size int) ([]models.Redemption, int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	page, size = NormalizePage(page, size)

	if filter.State != "" && !models.IsValidRedemptionState(filter.State) {
		return nil, 0, ErrInvalidState
	}

	query := s.DB.WithContext(ctx).Model(&models.Redemption{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.BenefitID != nil {
		query = query.Where("benefit_id = ?", *filter.BenefitID)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapInfra(err)
	}

	var redemptions []models.Redemption
	if err := query.Preload("Benefit").
		Order("redeemed_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&redemptions).Error; err != nil {
		return nil, 0, wrapInfra(err)
	}

	return redemptions, total, nil
}

func (s *RedemptionService) currentPoints(ctx context.Context, userID int) (int, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Select("points").Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return user.Points, nil
}

// NormalizePage clamps pagination parameters to the documented bounds.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
