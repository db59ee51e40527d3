package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingRefunded  BookingStatus = "refunded"
)

// Match is the pair a booking belongs to. The matching core never writes
// it; it exists so bookings have a valid owner.
type Match struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	City      string    `gorm:"column:city" json:"city,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Match) TableName() string { return "matches" }

type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	MatchID uuid.UUID  `gorm:"type:uuid;column:match_id;not null;index" json:"match_id"`
	VenueID *uuid.UUID `gorm:"type:uuid;column:venue_id;index" json:"venue_id,omitempty"`
	SlotID  *uuid.UUID `gorm:"type:uuid;column:slot_id;index" json:"slot_id,omitempty"`

	Status BookingStatus `gorm:"column:status;not null;default:'pending'" json:"status"`

	// ISO date and zero-padded "HH:MM".
	BookedDate string `gorm:"column:booked_date;not null;index" json:"booked_date"`
	BookedTime string `gorm:"column:booked_time;not null" json:"booked_time"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }
