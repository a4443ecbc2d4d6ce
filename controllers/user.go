package controllers

import (
	"net/http"
	"strconv"

	"github.com/baselinelab/baseline-be/config"
	"github.com/baselinelab/baseline-be/models"
	"github.com/baselinelab/baseline-be/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	pointsService *services.PointsService
}

func NewUserController() *UserController {
	return &UserController{
		pointsService: services.NewPointsService(),
	}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, currentUserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetPointsSummary backs the checkout screen's spend cap and the account
// points tab.
func (uc *UserController) GetPointsSummary(c *gin.Context) {
	summary, err := uc.pointsService.GetSummary(config.DB, currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (uc *UserController) GetPointsHistory(c *gin.Context) {
	// Bad pagination input degrades to defaults, it never errors.
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	total, items, err := uc.pointsService.ListTransactions(config.DB, currentUserID(c), page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"items": items,
	})
}
