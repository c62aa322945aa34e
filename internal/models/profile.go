package models

import "time"

// Profile is the internal record for an externally authenticated identity.
type Profile struct {
	Base
	ExternalID string    `json:"-" gorm:"size:128;uniqueIndex;not null"` // Firebase UID
	Username   string    `json:"username" gorm:"size:30;uniqueIndex;not null"`
	Name       string    `json:"name" gorm:"size:50;not null"`
	Bio        string    `json:"bio" gorm:"size:200"`
	Avatar     string    `json:"avatar"`
	Header     string    `json:"header"`
	TagID      *string   `json:"tag_id" gorm:"size:36;index"`
	Tag        *Tag      `json:"tag,omitempty" gorm:"foreignKey:TagID"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProfileCompact is the author/actor summary embedded in feeds and notifications.
type ProfileCompact struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

// ToCompact converts a Profile into its compact representation.
func (p *Profile) ToCompact() ProfileCompact {
	if p == nil {
		return ProfileCompact{}
	}
	return ProfileCompact{
		ID:       p.ID,
		Username: p.Username,
		Name:     p.Name,
		Avatar:   p.Avatar,
	}
}

// ProfileWithCounts is a profile page: the profile plus relationship counts
// and whether the viewer follows it.
type ProfileWithCounts struct {
	Profile
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	PostsCount     int64 `json:"posts_count"`
	IsFollowing    bool  `json:"is_following"`
	IsOwnProfile   bool  `json:"is_own_profile"`
}

type CreateProfileRequest struct {
	Username string `json:"username" validate:"required,max=30,username"`
	Name     string `json:"name" validate:"required,min=1,max=50"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=200"`
}

// UpdateProfileRequest is a per-field patch; nil fields are left untouched.
// An empty TagID clears the profile's tag.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,max=30,username"`
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=200"`
	Avatar   *string `json:"avatar,omitempty" validate:"omitempty,url"`
	Header   *string `json:"header,omitempty" validate:"omitempty,url"`
	TagID    *string `json:"tag_id,omitempty"`
}
