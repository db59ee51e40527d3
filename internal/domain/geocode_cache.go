package domain

import (
	"time"

	"github.com/google/uuid"
)

// GeocodeCache persists geocoding results per (query, provider). Road
// addresses move slowly, so the TTL is measured in days.
type GeocodeCache struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	RawQuery string `gorm:"column:raw_query;not null;index;uniqueIndex:uq_geocode_cache,priority:1" json:"raw_query"`
	Provider string `gorm:"column:provider;not null;uniqueIndex:uq_geocode_cache,priority:2" json:"provider"`

	Lat              float64 `gorm:"column:lat;not null" json:"lat"`
	Lng              float64 `gorm:"column:lng;not null" json:"lng"`
	FormattedAddress string  `gorm:"column:formatted_address" json:"formatted_address,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (GeocodeCache) TableName() string { return "geocode_cache" }
