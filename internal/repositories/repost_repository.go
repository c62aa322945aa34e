package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// RepostRepository defines the interface for repost operations
type RepostRepository interface {
	Toggle(ctx context.Context, userID, postID string) (EdgeToggle, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	CountsByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
	RepostedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

// PostgresRepostRepository implements RepostRepository
type PostgresRepostRepository struct {
	db *gorm.DB
}

func NewPostgresRepostRepository(db *gorm.DB) *PostgresRepostRepository {
	return &PostgresRepostRepository{db: db}
}

func (r *PostgresRepostRepository) Toggle(ctx context.Context, userID, postID string) (EdgeToggle, error) {
	repost := &models.Repost{UserID: userID, PostID: postID}
	return toggleEdge(ctx, r.db, "repost_id",
		map[string]interface{}{"user_id": userID, "post_id": postID},
		repost, func(rp *models.Repost) string { return rp.ID })
}

func (r *PostgresRepostRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Repost{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *PostgresRepostRepository) CountsByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return countByPost(ctx, r.db, &models.Repost{}, "post_id", postIDs)
}

func (r *PostgresRepostRepository) RepostedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return markedPostIDs(ctx, r.db, &models.Repost{}, userID, postIDs)
}
