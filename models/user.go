package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleCustomer UserRole = "customer"
)

type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"not null"`
	Name      string         `json:"name" gorm:"not null"`
	Phone     string         `json:"phone"`
	Role      UserRole       `json:"role" gorm:"default:'customer'"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Points cache. Derived from the ledger, mutated only by the points
	// service with single-statement atomic updates. Both columns stay >= 0.
	PointsBalance int `json:"points_balance" gorm:"not null;default:0"`
	PointsDebt    int `json:"points_debt" gorm:"not null;default:0"`

	// Relations
	Orders  []Order       `json:"orders,omitempty"`
	Rentals []RentalOrder `json:"rentals,omitempty"`
}
