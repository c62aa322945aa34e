package models

import "time"

type NotificationType string

const (
	NotificationLike   NotificationType = "like"
	NotificationRepost NotificationType = "repost"
	NotificationFollow NotificationType = "follow"
	NotificationReply  NotificationType = "reply"
)

// Notification is owned by its recipient and attributes an action to its actor.
type Notification struct {
	Base
	Type        NotificationType `json:"type" gorm:"size:20;index;not null"`
	RecipientID string           `json:"recipient_id" gorm:"size:36;index;not null"`
	ActorID     string           `json:"actor_id" gorm:"size:36;index;not null"`
	Actor       *Profile         `json:"actor,omitempty" gorm:"foreignKey:ActorID"`
	PostID      *string          `json:"post_id,omitempty" gorm:"size:36;index"`
	Post        *Post            `json:"post,omitempty" gorm:"foreignKey:PostID"`
	LikeID      *string          `json:"-" gorm:"size:36;index"`
	RepostID    *string          `json:"-" gorm:"size:36;index"`
	FollowID    *string          `json:"-" gorm:"size:36;index"`
	Read        bool             `json:"read" gorm:"column:is_read;default:false;index"`
}

// NotificationSettings gates notification generation per identity.
// A missing row means every flag is enabled.
type NotificationSettings struct {
	ExternalID string    `json:"-" gorm:"primaryKey;size:128"`
	OnFollow   bool      `json:"on_follow" gorm:"not null;default:true"`
	OnLike     bool      `json:"on_like" gorm:"not null;default:true"`
	OnRepost   bool      `json:"on_repost" gorm:"not null;default:true"`
	OnReply    bool      `json:"on_reply" gorm:"not null;default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultNotificationSettings returns the settings implied by a missing row.
func DefaultNotificationSettings(externalID string) NotificationSettings {
	return NotificationSettings{
		ExternalID: externalID,
		OnFollow:   true,
		OnLike:     true,
		OnRepost:   true,
		OnReply:    true,
	}
}

// Allows reports whether a notification of type t should be generated.
func (s NotificationSettings) Allows(t NotificationType) bool {
	switch t {
	case NotificationFollow:
		return s.OnFollow
	case NotificationLike:
		return s.OnLike
	case NotificationRepost:
		return s.OnRepost
	case NotificationReply:
		return s.OnReply
	}
	return false
}

// UpdateNotificationSettingsRequest is a partial update; nil fields keep their value.
type UpdateNotificationSettingsRequest struct {
	OnFollow *bool `json:"on_follow,omitempty"`
	OnLike   *bool `json:"on_like,omitempty"`
	OnRepost *bool `json:"on_repost,omitempty"`
	OnReply  *bool `json:"on_reply,omitempty"`
}
