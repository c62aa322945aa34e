package models

// Follow represents a follow relationship: FollowerID follows FollowingID.
type Follow struct {
	Base
	FollowerID  string `json:"follower_id" gorm:"size:36;not null;uniqueIndex:idx_follower_following"`
	FollowingID string `json:"following_id" gorm:"size:36;not null;index;uniqueIndex:idx_follower_following"`
}
