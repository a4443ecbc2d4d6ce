package models

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

// Order statuses keep the storefront's Korean labels: the frontend renders
// them verbatim.
const (
	OrderStatusPending   OrderStatus = "대기중"  // awaiting payment
	OrderStatusPaid      OrderStatus = "결제완료" // payment confirmed
	OrderStatusShipping  OrderStatus = "배송중"  // shipped
	OrderStatusDelivered OrderStatus = "배송완료" // delivered
	OrderStatusCancelled OrderStatus = "취소"   // terminal
	OrderStatusRefunded  OrderStatus = "환불"   // terminal
)

type Order struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	User      User           `json:"user,omitempty"`
	ProductID uint           `json:"product_id" gorm:"not null"`
	Product   Product        `json:"product,omitempty"`
	Quantity  int            `json:"quantity" gorm:"not null;default:1"`
	Status    OrderStatus    `json:"status" gorm:"default:'대기중'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	TotalPrice   int `json:"total_price" gorm:"not null"`
	PointsUsed   int `json:"points_used" gorm:"not null;default:0"`
	PayableTotal int `json:"payable_total" gorm:"not null"`

	Bank          string `json:"bank"`
	DepositorName string `json:"depositor_name"`
	Phone         string `json:"phone"`
	PostalCode    string `json:"postal_code"`
	Address       string `json:"address"`

	// Set when the order carried a stringing add-on.
	ApplicationID *uint                `json:"application_id,omitempty"`
	Application   *StringingApplication `json:"application,omitempty"`

	// Supplied by clients that retry order creation.
	IdempotencyKey *string `json:"idempotency_key,omitempty" gorm:"uniqueIndex"`
}

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusPaid      RentalStatus = "paid"
	RentalStatusOut       RentalStatus = "out"
	RentalStatusReturned  RentalStatus = "returned"
	RentalStatusCancelled RentalStatus = "canceled"
)

type RentalOrder struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	User      User           `json:"user,omitempty"`
	RacketID  uint           `json:"racket_id" gorm:"not null"`
	Racket    Racket         `json:"racket,omitempty"`
	Days      int            `json:"days" gorm:"not null"`
	Status    RentalStatus   `json:"status" gorm:"default:'pending'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Fee          int `json:"fee" gorm:"not null"`
	StringingFee int `json:"stringing_fee" gorm:"not null;default:0"`
	Deposit      int `json:"deposit" gorm:"not null"`
	TotalPrice   int `json:"total_price" gorm:"not null"`
	PointsUsed   int `json:"points_used" gorm:"not null;default:0"`
	PayableTotal int `json:"payable_total" gorm:"not null"`

	Bank         string `json:"bank"`
	PickupMethod string `json:"pickup_method"`
	Phone        string `json:"phone"`
	PostalCode   string `json:"postal_code"`
	Address      string `json:"address"`

	ApplicationID *uint                 `json:"application_id,omitempty"`
	Application   *StringingApplication `json:"application,omitempty"`

	IdempotencyKey *string `json:"idempotency_key,omitempty" gorm:"uniqueIndex"`
}
