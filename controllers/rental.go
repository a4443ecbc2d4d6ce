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

type RentalController struct {
	rentalService *services.RentalService
}

func NewRentalController() *RentalController {
	return &RentalController{
		rentalService: services.NewRentalService(),
	}
}

type CreateRentalRequest struct {
	RacketID     uint   `json:"racket_id" binding:"required"`
	Days         int    `json:"days" binding:"required"`
	PickupMethod string `json:"pickup_method" binding:"required"`
	Bank         string `json:"bank" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	PostalCode   string `json:"postal_code"`
	Address      string `json:"address"`
	PointsToUse  int    `json:"points_to_use"`

	WithStringing bool   `json:"with_stringing"`
	StringType    string `json:"string_type"`
	Tension       int    `json:"tension"`

	IdempotencyKey string `json:"idempotency_key"`
}

func (rc *RentalController) CreateRental(c *gin.Context) {
	var req CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rental, err := rc.rentalService.CreateRental(config.DB, services.CreateRentalParams{
		UserID:         currentUserID(c),
		RacketID:       req.RacketID,
		Days:           req.Days,
		PickupMethod:   req.PickupMethod,
		Bank:           req.Bank,
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
		config.WSHub.Broadcast(websocket.EventRentalCreated, websocket.RentalEvent{
			RentalID: rental.ID,
			UserID:   rental.UserID,
			Status:   string(rental.Status),
			Action:   "created",
		})
		if rental.ApplicationID != nil {
			config.WSHub.Broadcast(websocket.EventApplicationCreated, websocket.ApplicationEvent{
				ApplicationID: *rental.ApplicationID,
				UserID:        rental.UserID,
				Status:        string(models.ApplicationDraft),
				Action:        "created",
			})
		}
	}

	c.JSON(http.StatusCreated, gin.H{"rental": rental})
}

func (rc *RentalController) GetRentals(c *gin.Context) {
	rentals, err := rc.rentalService.GetUserRentals(config.DB, currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rentals": rentals})
}

// CancelRental cancels the caller's own rental under the optimistic lock and
// restores any spent points.
func (rc *RentalController) CancelRental(c *gin.Context) {
	rentalID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rental ID"})
		return
	}

	var req struct {
		ClientSeenAt *time.Time `json:"client_seen_at"`
	}
	_ = c.ShouldBindJSON(&req)

	var rental models.RentalOrder
	if err := config.DB.Where("id = ? AND user_id = ?", rentalID, currentUserID(c)).First(&rental).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rental not found", "code": "NOT_FOUND"})
		return
	}

	updated, err := rc.rentalService.UpdateRentalStatus(config.DB, uint(rentalID), models.RentalStatusCancelled, req.ClientSeenAt)
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
