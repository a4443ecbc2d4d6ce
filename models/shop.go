package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Price       int            `json:"price" gorm:"not null"`
	Stock       int            `json:"stock" gorm:"not null;default:0"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Racket is the rental inventory. Availability is derived:
// base_quantity minus rentals currently pending, paid or out.
type Racket struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Brand        string         `json:"brand"`
	Description  string         `json:"description"`
	DailyFee     int            `json:"daily_fee" gorm:"not null"`
	Deposit      int            `json:"deposit" gorm:"not null"`
	BaseQuantity int            `json:"base_quantity" gorm:"not null;default:1"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type ApplicationStatus string

const (
	ApplicationDraft     ApplicationStatus = "draft"
	ApplicationReceived  ApplicationStatus = "received"
	ApplicationStringing ApplicationStatus = "stringing"
	ApplicationDone      ApplicationStatus = "done"
)

// StringingApplication is the service-work draft spawned inside an order or
// rental transaction when the customer adds stringing.
type StringingApplication struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	UserID     uint              `json:"user_id" gorm:"not null;index"`
	User       User              `json:"-"`
	StringType string            `json:"string_type" gorm:"not null"`
	Tension    int               `json:"tension" gorm:"not null"`
	Status     ApplicationStatus `json:"status" gorm:"default:'draft'"`
	Notes      string            `json:"notes"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	DeletedAt  gorm.DeletedAt    `json:"-" gorm:"index"`
}

type Review struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	User      User           `json:"-"`
	OrderID   uint           `json:"order_id" gorm:"not null;uniqueIndex"`
	Order     Order          `json:"-"`
	Rating    int            `json:"rating" gorm:"not null"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
