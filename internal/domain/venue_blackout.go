package domain

import (
	"time"

	"github.com/google/uuid"
)

// VenueBlackout suppresses every slot of a venue for the date range
// [start_date, end_date], inclusive on both ends. Dates are ISO
// "YYYY-MM-DD" strings. A single-day blackout has start == end.
type VenueBlackout struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VenueID uuid.UUID `gorm:"type:uuid;column:venue_id;not null;index" json:"venue_id"`
	Venue   *Venue    `gorm:"constraint:OnDelete:CASCADE;foreignKey:VenueID;references:ID" json:"venue,omitempty"`

	StartDate string `gorm:"column:start_date;not null;index" json:"start_date"`
	EndDate   string `gorm:"column:end_date;not null;index" json:"end_date"`
	Reason    string `gorm:"column:reason" json:"reason,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (VenueBlackout) TableName() string { return "venue_blackouts" }
