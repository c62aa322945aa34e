package models

import "gorm.io/datatypes"

// Post is a top-level post or, when ParentID is set, a reply.
type Post struct {
	Base
	AuthorID string                      `json:"author_id" gorm:"size:36;index;not null"`
	Author   *Profile                    `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Content  string                      `json:"content" gorm:"size:800"`
	Images   datatypes.JSONSlice[string] `json:"images"`
	ParentID *string                     `json:"parent_id" gorm:"size:36;index"`
}

// IsReply reports whether the post answers another post.
func (p *Post) IsReply() bool {
	return p.ParentID != nil && *p.ParentID != ""
}

// CreatePostRequest defines the request body for creating a new post or reply
type CreatePostRequest struct {
	Content  string   `json:"content"`
	Images   []string `json:"images,omitempty" validate:"max=4,dive,url"`
	ParentID string   `json:"parent_id,omitempty"`
}
