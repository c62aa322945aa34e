package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByExternalID(ctx context.Context, externalID string) (*models.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	UsernameTaken(ctx context.Context, username, exceptID string) (bool, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	SearchProfiles(ctx context.Context, query string, tagIDs []string, limit int) ([]models.Profile, error)
}

// PostgresProfileRepository implements ProfileRepository with GORM
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *PostgresProfileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Preload("Tag").Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileByExternalID looks a profile up by its identity provider uid
func (r *PostgresProfileRepository) GetProfileByExternalID(ctx context.Context, externalID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Preload("Tag").Where("external_id = ?", externalID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Preload("Tag").Where("username = ?", username).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("external_id = ?", externalID).Count(&count).Error
	return count > 0, err
}

// UsernameTaken reports whether another profile than exceptID holds username.
func (r *PostgresProfileRepository) UsernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Profile{}).Where("username = ?", username)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Omit("Tag").Save(profile).Error
}

// likeEscaper makes LIKE wildcards literal. '!' needs no quoting in any
// supported dialect, unlike a backslash in MySQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchProfiles matches username or name case-insensitively, newest first.
// A non-empty tagIDs restricts the result to profiles carrying one of them.
func (r *PostgresProfileRepository) SearchProfiles(ctx context.Context, query string, tagIDs []string, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	pattern := "%" + likeEscaper.Replace(query) + "%"
	q := r.db.WithContext(ctx).Preload("Tag").
		Where("(LOWER(username) LIKE LOWER(?) ESCAPE '!' OR LOWER(name) LIKE LOWER(?) ESCAPE '!')", pattern, pattern)
	if len(tagIDs) > 0 {
		q = q.Where("tag_id IN ?", tagIDs)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&profiles).Error
	return profiles, err
}
