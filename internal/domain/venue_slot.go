package domain

import (
	"time"

	"github.com/google/uuid"
)

// VenueSlot is a weekly-recurring open window for a venue. Times are
// zero-padded "HH:MM" strings so lexicographic comparison matches
// chronological order; the end time is exclusive. Weekday is
// Monday-indexed (0=Monday .. 6=Sunday).
type VenueSlot struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VenueID uuid.UUID `gorm:"type:uuid;column:venue_id;not null;index" json:"venue_id"`
	Venue   *Venue    `gorm:"constraint:OnDelete:CASCADE;foreignKey:VenueID;references:ID" json:"venue,omitempty"`

	Weekday   int    `gorm:"column:weekday;not null" json:"weekday"`
	StartTime string `gorm:"column:start_time;not null" json:"start_time"`
	EndTime   string `gorm:"column:end_time;not null" json:"end_time"`

	MaxTablesForTwo int  `gorm:"column:max_tables_for_two;not null;default:2" json:"max_tables_for_two"`
	IsQuietSlot     bool `gorm:"column:is_quiet_slot;not null;default:false" json:"is_quiet_slot"`
	IsActive        bool `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (VenueSlot) TableName() string { return "venue_slots" }
