package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// PostPageQuery selects one page of posts ordered newest first.
type PostPageQuery struct {
	// AuthorIDs restricts the page to these authors; nil means any author.
	AuthorIDs []string
	// TopLevelOnly drops replies.
	TopLevelOnly bool
	// CursorID resumes strictly after this post in (created_at, id) DESC order.
	CursorID string
	Limit    int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ExistsPost(ctx context.Context, id string) (bool, error)
	ListPosts(ctx context.Context, q PostPageQuery) ([]models.Post, error)
	GetReplies(ctx context.Context, parentID string) ([]models.Post, error)
	ReplyCounts(ctx context.Context, postIDs []string) (map[string]int64, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	DeletePostTree(ctx context.Context, id string) ([]string, error)
}

// PostgresPostRepository implements PostRepository with GORM
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("Author").Create(post).Error
}

// GetPostByID retrieves a post with its author
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) ExistsPost(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListPosts returns one page of posts with authors preloaded. The cursor row
// must exist; callers check that first so an unknown cursor is reported.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, q PostPageQuery) ([]models.Post, error) {
	tx := r.db.WithContext(ctx).Preload("Author")
	if q.AuthorIDs != nil {
		tx = tx.Where("author_id IN ?", q.AuthorIDs)
	}
	if q.TopLevelOnly {
		tx = tx.Where("parent_id IS NULL")
	}
	if q.CursorID != "" {
		at := r.db.WithContext(ctx).Model(&models.Post{}).Select("created_at").Where("id = ?", q.CursorID)
		tx = tx.Where("(created_at < (?) OR (created_at = (?) AND id < ?))", at, at, q.CursorID)
	}

	var posts []models.Post
	err := tx.Order("created_at DESC").Order("id DESC").Limit(q.Limit).Find(&posts).Error
	return posts, err
}

// GetReplies returns the direct replies to parentID, oldest first
func (r *PostgresPostRepository) GetReplies(ctx context.Context, parentID string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Preload("Author").
		Where("parent_id = ?", parentID).
		Order("created_at ASC").Order("id ASC").
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) ReplyCounts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return countByPost(ctx, r.db, &models.Post{}, "parent_id", postIDs)
}

func (r *PostgresPostRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// DeletePostTree removes a post, every reply beneath it, and their likes,
// reposts and notifications in one transaction. It returns the removed ids.
func (r *PostgresPostRepository) DeletePostTree(ctx context.Context, id string) ([]string, error) {
	var removed []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []string{id}
		frontier := []string{id}
		for len(frontier) > 0 {
			var children []string
			if err := tx.Model(&models.Post{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		if err := tx.Where("post_id IN ?", ids).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN ?", ids).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN ?", ids).Delete(&models.Repost{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		removed = ids
		return nil
	})
	return removed, err
}
