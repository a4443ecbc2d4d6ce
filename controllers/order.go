package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/baselinelab/baseline-be/config"
	"github.com/baselinelab/baseline-be/models"
	"github.com/baselinelab/baseline-be/services"
	"github.com/baselinelab/baseline-be/websocket"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService  *services.OrderService
	reviewService *services.ReviewService
}

func NewOrderController() *OrderController {
	return &OrderController{
		orderService:  services.NewOrderService(),
		reviewService: services.NewReviewService(),
	}
}

type CreateOrderRequest struct {
	ProductID     uint   `json:"product_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required"`
	Bank          string `json:"bank" binding:"required"`
	DepositorName string `json:"depositor_name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	PostalCode    string `json:"postal_code" binding:"required"`
	Address       string `json:"address" binding:"required"`
	PointsToUse   int    `json:"points_to_use"`

	WithStringing bool   `json:"with_stringing"`
	StringType    string `json:"string_type"`
	Tension       int    `json:"tension"`

	IdempotencyKey string `json:"idempotency_key"`
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := oc.orderService.CreateOrder(config.DB, services.CreateOrderParams{
		UserID:         currentUserID(c),
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		Bank:           req.Bank,
		DepositorName:  req.DepositorName,
		Phone:          req.Phone,
		PostalCode:     req.PostalCode,
		Address:        req.Address,
		PointsToUse:    req.PointsToUse,
		WithStringing:  req.WithStringing,
		StringType:     req.StringType,
		Tension:        req.Tension,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if config.WSHub != nil {
		config.WSHub.Broadcast(websocket.EventOrderCreated, websocket.OrderEvent{
			OrderID: order.ID,
			UserID:  order.UserID,
			Status:  string(order.Status),
			Action:  "created",
		})
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (oc *OrderController) GetOrders(c *gin.Context) {
	orders, err := oc.orderService.GetUserOrders(config.DB, currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type PatchStatusRequest struct {
	Status string `json:"status" binding:"required"`

	// The updated_at the client last saw. When present it becomes the
	// optimistic lock; a mismatch is a conflict, not a silent overwrite.
	ClientSeenAt *time.Time `json:"client_seen_at"`
}

// CancelOrder lets a customer cancel their own order while the state machine
// still allows it.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req struct {
		ClientSeenAt *time.Time `json:"client_seen_at"`
	}
	_ = c.ShouldBindJSON(&req)

	var order models.Order
	if err := config.DB.Where("id = ? AND user_id = ?", orderID, currentUserID(c)).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found", "code": "NOT_FOUND"})
		return
	}

	updated, err := oc.orderService.UpdateOrderStatus(config.DB, uint(orderID), models.OrderStatusCancelled, req.ClientSeenAt)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if config.WSHub != nil {
		config.WSHub.Broadcast(websocket.EventOrderStatusChanged, websocket.OrderEvent{
			OrderID: updated.ID,
			UserID:  updated.UserID,
			Status:  string(updated.Status),
			Action:  "status_changed",
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"order":      updated,
		"updated_at": updated.UpdatedAt,
	})
}

type CreateReviewRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Content string `json:"content"`
}

func (oc *OrderController) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := oc.reviewService.CreateReview(config.DB, currentUserID(c), req.OrderID, req.Rating, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}
