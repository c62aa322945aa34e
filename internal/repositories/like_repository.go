package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	Toggle(ctx context.Context, userID, postID string) (EdgeToggle, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	CountsByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

// PostgresLikeRepository implements LikeRepository with GORM
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// Toggle likes the post if userID has not liked it yet, and unlikes it otherwise.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, userID, postID string) (EdgeToggle, error) {
	like := &models.Like{UserID: userID, PostID: postID}
	return toggleEdge(ctx, r.db, "like_id",
		map[string]interface{}{"user_id": userID, "post_id": postID},
		like, func(l *models.Like) string { return l.ID })
}

func (r *PostgresLikeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *PostgresLikeRepository) CountsByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return countByPost(ctx, r.db, &models.Like{}, "post_id", postIDs)
}

// LikedPostIDs returns the subset of postIDs liked by userID in a single query.
func (r *PostgresLikeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return markedPostIDs(ctx, r.db, &models.Like{}, userID, postIDs)
}
