package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identifier and creation timestamp shared by every table.
// IDs are UUIDv7 so that lexical order follows creation order.
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// BeforeCreate assigns a time-ordered ID when the caller did not set one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		b.ID = id.String()
	}
	return nil
}

// All returns every model that is part of the schema, in migration order.
func All() []interface{} {
	return []interface{}{
		&Tag{},
		&Profile{},
		&Post{},
		&Like{},
		&Repost{},
		&Follow{},
		&Notification{},
		&NotificationSettings{},
	}
}
