package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IntentEmbedding is an append-only log of a search intent at suggest
// time, written off the response path. Used for analytics and offline
// re-ranking, never read by the matching core.
type IntentEmbedding struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SessionID  string         `gorm:"column:session_id;index" json:"session_id,omitempty"`
	IntentText string         `gorm:"column:intent_text;type:text;not null" json:"intent_text"`
	Embedding  datatypes.JSON `gorm:"column:embedding;not null" json:"embedding"`
	ModelName  string         `gorm:"column:model_name;not null" json:"model_name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (IntentEmbedding) TableName() string { return "intent_embeddings" }
