package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationSettingsRepository stores per-identity notification preferences.
type NotificationSettingsRepository interface {
	Find(ctx context.Context, externalID string) (*models.NotificationSettings, error)
	GetOrCreate(ctx context.Context, externalID string) (*models.NotificationSettings, error)
	Update(ctx context.Context, externalID string, fields map[string]interface{}) (*models.NotificationSettings, error)
}

type postgresNotificationSettingsRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationSettingsRepository(db *gorm.DB) NotificationSettingsRepository {
	return &postgresNotificationSettingsRepository{db: db}
}

// Find returns the stored row, or the all-enabled defaults when none exists.
func (r *postgresNotificationSettingsRepository) Find(ctx context.Context, externalID string) (*models.NotificationSettings, error) {
	var s models.NotificationSettings
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		d := models.DefaultNotificationSettings(externalID)
		return &d, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresNotificationSettingsRepository) GetOrCreate(ctx context.Context, externalID string) (*models.NotificationSettings, error) {
	row := models.DefaultNotificationSettings(externalID)
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil && !IsDuplicateKey(err) {
		return nil, err
	}
	var s models.NotificationSettings
	if err := db.Where("external_id = ?", externalID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Update applies fields to the identity's row, creating it first if needed.
func (r *postgresNotificationSettingsRepository) Update(ctx context.Context, externalID string, fields map[string]interface{}) (*models.NotificationSettings, error) {
	s, err := r.GetOrCreate(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return s, nil
	}
	if err := r.db.WithContext(ctx).Model(s).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.GetOrCreate(ctx, externalID)
}
