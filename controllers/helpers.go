package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/baselinelab/baseline-be/services"
	"github.com/gin-gonic/gin"
)

// handleServiceError maps service errors onto the response taxonomy. Store
// errors never pass through verbatim: anything unclassified becomes a
// generic 500 with the details kept in the server log.
func handleServiceError(c *gin.Context, err error) {
	code := services.ErrorCode(err)

	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, services.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": code})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": code})
	case services.IsClientError(err), errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": code})
	default:
		log.Printf("[API] unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": code})
	}
}

func currentUserID(c *gin.Context) uint {
	userID, _ := c.Get("user_id")
	return userID.(uint)
}
