package models

// Like represents a like on a post. A profile likes a post at most once.
type Like struct {
	Base
	UserID string `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_like_user_post"`
	PostID string `json:"post_id" gorm:"size:36;not null;index;uniqueIndex:idx_like_user_post"`
}
