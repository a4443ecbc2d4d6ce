package models

import (
	"time"

	"gorm.io/gorm"
)

// BoardPost is a community board entry. PATCHes use updated_at as the
// optimistic-concurrency token, same as orders.
type BoardPost struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	User      User           `json:"user,omitempty"`
	Title     string         `json:"title" gorm:"not null"`
	Content   string         `json:"content"`
	Category  string         `json:"category"`
	IsPinned  bool           `json:"is_pinned" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
