package models

// Repost represents a repost of a post. A profile reposts a post at most once.
type Repost struct {
	Base
	UserID string `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_repost_user_post"`
	PostID string `json:"post_id" gorm:"size:36;not null;index;uniqueIndex:idx_repost_user_post"`
}
