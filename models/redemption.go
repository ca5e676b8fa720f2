package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RedemptionState string

const (
	RedemptionActive    RedemptionState = "ACTIVE"
	RedemptionUsed      RedemptionState = "USED"
	RedemptionCancelled RedemptionState = "CANCELLED"
	RedemptionExpired   RedemptionState = "EXPIRED"
)

type Redemption struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      int             `gorm:"not null;index" json:"user_id"`
	BenefitID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"benefit_id"`
	Benefit     Benefit         `gorm:"foreignKey:BenefitID" json:"benefit,omitempty"`
	PointsSpent int             `gorm:"not null" json:"points_spent"`
	RedeemedAt  time.Time       `gorm:"not null;index" json:"redeemed_at"`
	UseBy       time.Time       `gorm:"not null" json:"use_by"`
	State       RedemptionState `gorm:"default:ACTIVE;index" json:"state"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r *Redemption) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AllowedRedemptionTransitions defines the valid redemption state machine.
// USED, CANCELLED and EXPIRED are terminal.
var AllowedRedemptionTransitions = map[RedemptionState][]RedemptionState{
	RedemptionActive:    {RedemptionUsed, RedemptionCancelled, RedemptionExpired},
	RedemptionUsed:      {},
	RedemptionCancelled: {},
	RedemptionExpired:   {},
}

// IsValidRedemptionState checks that a state is one of the enumerated values.
func IsValidRedemptionState(s RedemptionState) bool {
	_, ok := AllowedRedemptionTransitions[s]
	return ok
}

// IsValidRedemptionTransition checks if a state transition is allowed.
func IsValidRedemptionTransition(from, to RedemptionState) bool {
	allowed, exists := AllowedRedemptionTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted from s.
func (s RedemptionState) IsTerminal() bool {
	return len(AllowedRedemptionTransitions[s]) == 0 && IsValidRedemptionState(s)
}
