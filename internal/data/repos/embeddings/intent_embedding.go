package embeddings

import (
	"context"

	"gorm.io/gorm"

	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

// IntentEmbeddingRepo is append-only: the matching core logs intents and
// never reads them back.
type IntentEmbeddingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.IntentEmbedding) ([]*types.IntentEmbedding, error)
}

type intentEmbeddingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIntentEmbeddingRepo(db *gorm.DB, baseLog *logger.Logger) IntentEmbeddingRepo {
	return &intentEmbeddingRepo{db: db, log: baseLog.With("repo", "IntentEmbeddingRepo")}
}

func (r *intentEmbeddingRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.IntentEmbedding) ([]*types.IntentEmbedding, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.IntentEmbedding{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
