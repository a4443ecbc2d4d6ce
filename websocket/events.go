package websocket

// Event types for WebSocket messages
const (
	// Order events
	EventOrderCreated       = "order:created"
	EventOrderStatusChanged = "order:status_changed"

	// Rental events
	EventRentalCreated       = "rental:created"
	EventRentalStatusChanged = "rental:status_changed"

	// Stringing application events
	EventApplicationCreated       = "application:created"
	EventApplicationStatusChanged = "application:status_changed"

	// Points events
	EventPointsAdjusted = "points:adjusted"
)

// OrderEvent represents an order-related event
type OrderEvent struct {
	OrderID     uint   `json:"order_id"`
	UserID      uint   `json:"user_id"`
	ProductName string `json:"product_name"`
	Status      string `json:"status"`
	Action      string `json:"action"` // created, status_changed
}

// RentalEvent represents a rental-related event
type RentalEvent struct {
	RentalID   uint   `json:"rental_id"`
	UserID     uint   `json:"user_id"`
	RacketName string `json:"racket_name"`
	Status     string `json:"status"`
	Action     string `json:"action"` // created, status_changed
}

// ApplicationEvent represents a stringing application event
type ApplicationEvent struct {
	ApplicationID uint   `json:"application_id"`
	UserID        uint   `json:"user_id"`
	Status        string `json:"status"`
	Action        string `json:"action"`
}

// PointsEvent signals a manual points adjustment by an admin
type PointsEvent struct {
	UserID uint `json:"user_id"`
	Amount int  `json:"amount"`
}
