package models

// Tag is an entry of the small closed vocabulary profiles may carry.
type Tag struct {
	Base
	Name        string `json:"name" gorm:"size:50;uniqueIndex;not null"`
	DisplayName string `json:"display_name" gorm:"size:100;not null"`
}
