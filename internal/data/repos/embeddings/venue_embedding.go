package embeddings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

type VenueEmbeddingRepo interface {
	// Upsert inserts or refreshes the single embedding row for a venue.
	Upsert(ctx context.Context, tx *gorm.DB, row *types.VenueEmbedding) error

	GetByVenueIDs(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) ([]*types.VenueEmbedding, error)
	VenueIDsWithEmbedding(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) ([]uuid.UUID, error)
	SourceTextsByVenueIDs(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type venueEmbeddingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVenueEmbeddingRepo(db *gorm.DB, baseLog *logger.Logger) VenueEmbeddingRepo {
	return &venueEmbeddingRepo{db: db, log: baseLog.With("repo", "VenueEmbeddingRepo")}
}

func (r *venueEmbeddingRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.VenueEmbedding) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "venue_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding", "model_name", "source_text", "updated_at"}),
		}).
		Create(row).Error
}

func (r *venueEmbeddingRepo) GetByVenueIDs(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) ([]*types.VenueEmbedding, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.VenueEmbedding
	if len(venueIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("venue_id IN ?", venueIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *venueEmbeddingRepo) VenueIDsWithEmbedding(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if len(venueIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Model(&types.VenueEmbedding{}).
		Where("venue_id IN ?", venueIDs).
		Pluck("venue_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *venueEmbeddingRepo) SourceTextsByVenueIDs(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	rows, err := r.GetByVenueIDs(ctx, tx, venueIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		out[row.VenueID] = row.SourceText
	}
	return out, nil
}
