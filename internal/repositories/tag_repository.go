package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines the interface for tag lookups
type TagRepository interface {
	GetTags(ctx context.Context) ([]models.Tag, error)
	GetTagByID(ctx context.Context, id string) (*models.Tag, error)
	ExistsTag(ctx context.Context, id string) (bool, error)
	UpsertTag(ctx context.Context, tag *models.Tag) error
}

type PostgresTagRepository struct {
	db *gorm.DB
}

func NewPostgresTagRepository(db *gorm.DB) *PostgresTagRepository {
	return &PostgresTagRepository{db: db}
}

func (r *PostgresTagRepository) GetTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *PostgresTagRepository) GetTagByID(ctx context.Context, id string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *PostgresTagRepository) ExistsTag(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpsertTag inserts the tag or refreshes the display name of the existing one.
func (r *PostgresTagRepository) UpsertTag(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name"}),
	}).Create(tag).Error
}
