package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VenueEmbedding holds one embedding row per venue. The vector is stored
// as a JSON float array; the embedding service rejects writes whose
// length differs from the first stored vector. SourceText is kept for
// auditing and for detecting when a venue needs re-embedding.
type VenueEmbedding struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VenueID uuid.UUID `gorm:"type:uuid;column:venue_id;not null;uniqueIndex" json:"venue_id"`
	Venue   *Venue    `gorm:"constraint:OnDelete:CASCADE;foreignKey:VenueID;references:ID" json:"venue,omitempty"`

	Embedding  datatypes.JSON `gorm:"column:embedding;not null" json:"embedding"`
	ModelName  string         `gorm:"column:model_name;not null" json:"model_name"`
	SourceText string         `gorm:"column:source_text;type:text" json:"source_text,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (VenueEmbedding) TableName() string { return "venue_embeddings" }
