package controllers

import (
	"net/http"

	"github.com/baselinelab/baseline-be/config"
	"github.com/baselinelab/baseline-be/models"
	"github.com/baselinelab/baseline-be/services"
	"github.com/gin-gonic/gin"
)

type ShopController struct {
	rentalService *services.RentalService
}

func NewShopController() *ShopController {
	return &ShopController{
		rentalService: services.NewRentalService(),
	}
}

func (sc *ShopController) GetProducts(c *gin.Context) {
	var products []models.Product
	if err := config.DB.Where("is_active = ?", true).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (sc *ShopController) GetRackets(c *gin.Context) {
	var rackets []models.Racket
	if err := config.DB.Where("is_active = ?", true).Find(&rackets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rackets"})
		return
	}

	// Attach live availability so the storefront can grey out sold-out
	// rackets.
	type racketWithAvailability struct {
		models.Racket
		Available int `json:"available"`
	}
	out := make([]racketWithAvailability, 0, len(rackets))
	for _, r := range rackets {
		available, err := sc.rentalService.AvailableUnits(config.DB, r)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rackets"})
			return
		}
		if available < 0 {
			available = 0
		}
		out = append(out, racketWithAvailability{Racket: r, Available: available})
	}

	c.JSON(http.StatusOK, gin.H{"rackets": out})
}
