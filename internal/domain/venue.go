package domain

import (
	"time"

	"github.com/google/uuid"
)

type PriceBand string

const (
	PriceBudget  PriceBand = "budget"
	PriceMid     PriceBand = "mid"
	PricePremium PriceBand = "premium"
	PriceLuxury  PriceBand = "luxury"
)

type NoiseLevel string

const (
	NoiseQuiet    NoiseLevel = "quiet"
	NoiseModerate NoiseLevel = "moderate"
	NoiseLively   NoiseLevel = "lively"
	NoiseLoud     NoiseLevel = "loud"
)

type Venue struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name    string  `gorm:"column:name;not null" json:"name"`
	Email   *string `gorm:"column:email;uniqueIndex" json:"email,omitempty"`
	Phone   string  `gorm:"column:phone" json:"phone,omitempty"`
	Website string  `gorm:"column:website" json:"website,omitempty"`

	Address  string `gorm:"column:address;not null" json:"address"`
	City     string `gorm:"column:city;not null;index" json:"city"`
	Country  string `gorm:"column:country;not null;default:'UK'" json:"country"`
	Postcode string `gorm:"column:postcode" json:"postcode,omitempty"`

	Lat *float64 `gorm:"column:lat" json:"lat,omitempty"`
	Lng *float64 `gorm:"column:lng" json:"lng,omitempty"`

	Cuisine string `gorm:"column:cuisine" json:"cuisine,omitempty"`
	// Comma-separated token set, e.g. "cosy,romantic,candlelit".
	VibeTags    string     `gorm:"column:vibe_tags" json:"vibe_tags,omitempty"`
	Description string     `gorm:"column:description;type:text" json:"description,omitempty"`
	NoiseLevel  NoiseLevel `gorm:"column:noise_level" json:"noise_level,omitempty"`
	PriceBand   PriceBand  `gorm:"column:price_band" json:"price_band,omitempty"`

	TotalCapacity int  `gorm:"column:total_capacity" json:"total_capacity,omitempty"`
	IsActive      bool `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Venue) TableName() string { return "venues" }
