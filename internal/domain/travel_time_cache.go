package domain

import (
	"time"

	"github.com/google/uuid"
)

// TravelTimeCache persists resolved routing durations. Entries are keyed
// by origin grid hash + venue + mode + day-part bucket so peak and
// off-peak lookups expire independently.
type TravelTimeCache struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	OriginHash string    `gorm:"column:origin_hash;not null;index;uniqueIndex:uq_travel_time_cache,priority:1" json:"origin_hash"`
	VenueID    uuid.UUID `gorm:"type:uuid;column:venue_id;not null;index;uniqueIndex:uq_travel_time_cache,priority:2" json:"venue_id"`
	Mode       string    `gorm:"column:mode;not null;default:'drive';uniqueIndex:uq_travel_time_cache,priority:3" json:"mode"`
	TimeBucket string    `gorm:"column:time_bucket;not null;uniqueIndex:uq_travel_time_cache,priority:4" json:"time_bucket"`

	TravelMinutes float64   `gorm:"column:travel_minutes;not null" json:"travel_minutes"`
	LastCheckedAt time.Time `gorm:"column:last_checked_at;not null" json:"last_checked_at"`
}

func (TravelTimeCache) TableName() string { return "travel_time_cache" }
