package controllers

import (
	"net/http"
	"strconv"

	"github.com/baselinelab/baseline-be/config"
	"github.com/baselinelab/baseline-be/models"
	"github.com/baselinelab/baseline-be/services"
	"github.com/baselinelab/baseline-be/websocket"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	pointsService *services.PointsService
	orderService  *services.OrderService
	rentalService *services.RentalService
}

func NewAdminController() *AdminController {
	return &AdminController{
		pointsService: services.NewPointsService(),
		orderService:  services.NewOrderService(),
		rentalService: services.NewRentalService(),
	}
}

func (ac *AdminController) GetUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

type AdjustPointsRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Amount int    `json:"amount" binding:"required"`
	RefKey string `json:"ref_key"`
	Reason string `json:"reason"`

	// Deduct only. Forced mode books debt instead of rejecting.
	AllowNegativeBalance bool `json:"allow_negative_balance"`
}

func (ac *AdminController) GrantPoints(c *gin.Context) {
	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ac.pointsService.Grant(config.DB, services.PointsOperation{
		UserID: req.UserID,
		Amount: req.Amount,
		Type:   models.PointTypeAdminGrant,
		RefKey: req.RefKey,
		Reason: req.Reason,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if config.WSHub != nil && !result.Duplicated {
		config.WSHub.Broadcast(websocket.EventPointsAdjusted, websocket.PointsEvent{
			UserID: req.UserID,
			Amount: result.Amount,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"result": result})
}

func (ac *AdminController) DeductPoints(c *gin.Context) {
	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ac.pointsService.Deduct(config.DB, services.PointsOperation{
		UserID:               req.UserID,
		Amount:               req.Amount,
		Type:                 models.PointTypeAdminDeduct,
		RefKey:               req.RefKey,
		Reason:               req.Reason,
		AllowNegativeBalance: req.AllowNegativeBalance,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if config.WSHub != nil && !result.Duplicated {
		config.WSHub.Broadcast(websocket.EventPointsAdjusted, websocket.PointsEvent{
			UserID: req.UserID,
			Amount: result.Amount,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"result": result})
}

func (ac *AdminController) GetUserPoints(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	summary, err := ac.pointsService.GetSummary(config.DB, uint(userID))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	total, items, err := ac.pointsService.ListTransactions(config.DB, uint(userID), page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"total":   total,
		"items":   items,
	})
}

func (ac *AdminController) GetOrders(c *gin.Context) {
	var orders []models.Order
	query := config.DB.Preload("User").Preload("Product").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdateOrderStatus drives the order state machine from the back office.
// Multiple admins editing the same order are serialized by the optimistic
// lock: the loser gets a conflict, not a silent overwrite.
func (ac *AdminController) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req PatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := ac.orderService.UpdateOrderStatus(config.DB, uint(orderID), models.OrderStatus(req.Status), req.ClientSeenAt)
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

func (ac *AdminController) GetRentals(c *gin.Context) {
	var rentals []models.RentalOrder
	query := config.DB.Preload("User").Preload("Racket").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&rentals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rentals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rentals": rentals})
}

func (ac *AdminController) UpdateRentalStatus(c *gin.Context) {
	rentalID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rental ID"})
		return
	}

	var req PatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := ac.rentalService.UpdateRentalStatus(config.DB, uint(rentalID), models.RentalStatus(req.Status), req.ClientSeenAt)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if config.WSHub != nil {
		config.WSHub.Broadcast(websocket.EventRentalStatusChanged, websocket.RentalEvent{
			RentalID: updated.ID,
			UserID:   updated.UserID,
			Status:   string(updated.Status),
			Action:   "status_changed",
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"rental":     updated,
		"updated_at": updated.UpdatedAt,
	})
}

func (ac *AdminController) GetPendingApplications(c *gin.Context) {
	var applications []models.StringingApplication
	err := config.DB.
		Where("status IN (?, ?)", models.ApplicationDraft, models.ApplicationReceived).
		Order("created_at ASC").
		Find(&applications).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int    `json:"price" binding:"required"`
	Stock       int    `json:"stock"`
}

func (ac *AdminController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
	}
	if err := config.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

type CreateRacketRequest struct {
	Name         string `json:"name" binding:"required"`
	Brand        string `json:"brand"`
	Description  string `json:"description"`
	DailyFee     int    `json:"daily_fee" binding:"required"`
	Deposit      int    `json:"deposit" binding:"required"`
	BaseQuantity int    `json:"base_quantity" binding:"required"`
}

func (ac *AdminController) CreateRacket(c *gin.Context) {
	var req CreateRacketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	racket := models.Racket{
		Name:         req.Name,
		Brand:        req.Brand,
		Description:  req.Description,
		DailyFee:     req.DailyFee,
		Deposit:      req.Deposit,
		BaseQuantity: req.BaseQuantity,
		IsActive:     true,
	}
	if err := config.DB.Create(&racket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create racket"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"racket": racket})
}
