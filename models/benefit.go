package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Benefit struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name            string    `gorm:"uniqueIndex;not null" json:"name"`
	Detail          string    `gorm:"not null" json:"detail"`
	Image           string    `json:"image"` // URL to the benefit image
	Rule1           string    `json:"rule1"`
	Rule2           string    `json:"rule2"`
	Value           int       `gorm:"not null" json:"value"` // point cost
	RequiresJourney bool      `gorm:"default:false" json:"requires_journey"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b *Benefit) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
