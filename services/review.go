package services

import (
	"errors"
	"fmt"

	"github.com/baselinelab/baseline-be/models"
	"gorm.io/gorm"
)

type ReviewService struct {
	pointsService *PointsService
}

func NewReviewService() *ReviewService {
	return &ReviewService{
		pointsService: NewPointsService(),
	}
}

const reviewRewardPoints = 500

// CreateReview records a review for a delivered order and issues the fixed
// review reward. One review per order; the reward refKey keeps the grant
// idempotent even if the review insert is retried.
func (s *ReviewService) CreateReview(db *gorm.DB, userID, orderID uint, rating int, content string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, &ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}

	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderStatusDelivered {
		return nil, ErrInvalidTransition
	}

	var review *models.Review
	err := withRetryableTransaction(db, txMaxAttempts, func(tx *gorm.DB) error {
		r := models.Review{
			UserID:  userID,
			OrderID: orderID,
			Rating:  rating,
			Content: content,
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}

		_, err := s.pointsService.Grant(tx, PointsOperation{
			UserID:   userID,
			Amount:   reviewRewardPoints,
			Type:     models.PointTypeReviewReward,
			RefKey:   fmt.Sprintf("review:%d:reward", r.ID),
			RefTable: "reviews",
			RefID:    r.ID,
			Reason:   "review reward",
		})
		if err != nil {
			return err
		}

		review = &r
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}

	return review, nil
}
