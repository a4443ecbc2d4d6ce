package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/baselinelab/baseline-be/models"
	"gorm.io/gorm"
)

type OrderService struct {
	pointsService *PointsService
}

func NewOrderService() *OrderService {
	return &OrderService{
		pointsService: NewPointsService(),
	}
}

type CreateOrderParams struct {
	UserID        uint
	ProductID     uint
	Quantity      int
	Bank          string
	DepositorName string
	Phone         string
	PostalCode    string
	Address       string
	PointsToUse   int

	WithStringing bool
	StringType    string
	Tension       int

	IdempotencyKey string
}

func (p CreateOrderParams) validate() error {
	if p.ProductID == 0 {
		return &ValidationError{Field: "product_id", Message: "required"}
	}
	if p.Quantity < 1 || p.Quantity > 10 {
		return &ValidationError{Field: "quantity", Message: "must be between 1 and 10"}
	}
	if err := validateBank(p.Bank); err != nil {
		return err
	}
	if p.DepositorName == "" {
		return &ValidationError{Field: "depositor_name", Message: "required"}
	}
	if err := validatePhone(p.Phone); err != nil {
		return err
	}
	if err := validatePostalCode(p.PostalCode); err != nil {
		return err
	}
	if p.Address == "" {
		return &ValidationError{Field: "address", Message: "required"}
	}
	if p.PointsToUse < 0 {
		return &ValidationError{Field: "points_to_use", Message: "must not be negative"}
	}
	if p.WithStringing {
		if p.StringType == "" {
			return &ValidationError{Field: "string_type", Message: "required"}
		}
		if p.Tension < 40 || p.Tension > 70 {
			return &ValidationError{Field: "tension", Message: "must be between 40 and 70 lbs"}
		}
	}
	return nil
}

// CreateOrder mirrors the rental workflow for product purchases. The stock
// decrement is a conditional single-statement update inside the transaction,
// so two concurrent orders cannot both take the last unit.
func (s *OrderService) CreateOrder(db *gorm.DB, p CreateOrderParams) (*models.Order, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	if p.IdempotencyKey != "" {
		var existing models.Order
		err := db.Where("idempotency_key = ?", p.IdempotencyKey).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var product models.Product
	if err := db.Where("is_active = ?", true).First(&product, p.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if product.Stock < p.Quantity {
		return nil, ErrProductUnavailable
	}

	strFee := 0
	if p.WithStringing {
		strFee = stringingFee
	}
	total := product.Price*p.Quantity + strFee

	// Products have no deposit; the whole total is points-eligible.
	spend := roundDownTo100(p.PointsToUse)
	if spend > total {
		spend = total
	}

	var order *models.Order
	err := withRetryableTransaction(db, txMaxAttempts, func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", p.ProductID, p.Quantity).
			Update("stock", gorm.Expr("stock - ?", p.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductUnavailable
		}

		o := models.Order{
			UserID:        p.UserID,
			ProductID:     p.ProductID,
			Quantity:      p.Quantity,
			Status:        models.OrderStatusPending,
			TotalPrice:    total,
			PointsUsed:    spend,
			PayableTotal:  total - spend,
			Bank:          p.Bank,
			DepositorName: p.DepositorName,
			Phone:         p.Phone,
			PostalCode:    p.PostalCode,
			Address:       p.Address,
		}
		if p.IdempotencyKey != "" {
			key := p.IdempotencyKey
			o.IdempotencyKey = &key
		}
		if err := tx.Create(&o).Error; err != nil {
			return err
		}

		if p.WithStringing {
			app := models.StringingApplication{
				UserID:     p.UserID,
				StringType: p.StringType,
				Tension:    p.Tension,
				Status:     models.ApplicationDraft,
			}
			if err := tx.Create(&app).Error; err != nil {
				return err
			}
			if err := tx.Model(&o).Update("application_id", app.ID).Error; err != nil {
				return err
			}
			o.ApplicationID = &app.ID
		}

		if spend > 0 {
			_, err := s.pointsService.Deduct(tx, PointsOperation{
				UserID:   p.UserID,
				Amount:   spend,
				Type:     models.PointTypeSpendOrder,
				RefKey:   fmt.Sprintf("order:%d:spend", o.ID),
				RefTable: "orders",
				RefID:    o.ID,
				Reason:   "order checkout",
			})
			if err != nil {
				return err
			}
		}

		order = &o
		return nil
	})
	if err != nil {
		// Two concurrent requests with the same key: the loser re-reads the
		// winner's order.
		if p.IdempotencyKey != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Order
			if ferr := db.Where("idempotency_key = ?", p.IdempotencyKey).First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}

	return order, nil
}

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:   {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:      {models.OrderStatusShipping, models.OrderStatusCancelled, models.OrderStatusRefunded},
	models.OrderStatusShipping:  {models.OrderStatusDelivered, models.OrderStatusRefunded},
	models.OrderStatusDelivered: {models.OrderStatusRefunded},
}

func orderCanTransition(from, to models.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Paid orders earn 1% of the amount actually payable.
const paidRewardDivisor = 100

// UpdateOrderStatus applies one state-machine step under the optimistic
// lock. Side effects ride in the same transaction:
//   - transition to paid grants the purchase reward (refKey-idempotent, so a
//     redelivered payment webhook grants once),
//   - cancel and refund restore spent points and claw the reward back with a
//     forced deduction, which books debt instead of failing when the points
//     were already spent elsewhere.
func (s *OrderService) UpdateOrderStatus(db *gorm.DB, orderID uint, to models.OrderStatus, clientSeen *time.Time) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !orderCanTransition(order.Status, to) {
		return nil, ErrInvalidTransition
	}

	wasPaid := order.Status != models.OrderStatusPending

	err := withRetryableTransaction(db, txMaxAttempts, func(tx *gorm.DB) error {
		if err := ApplyOptimisticPatch(tx, &models.Order{}, orderID, clientSeen, map[string]interface{}{
			"status": to,
		}); err != nil {
			return err
		}

		switch to {
		case models.OrderStatusPaid:
			reward := order.PayableTotal / paidRewardDivisor
			if reward > 0 {
				_, err := s.pointsService.Grant(tx, PointsOperation{
					UserID:   order.UserID,
					Amount:   reward,
					Type:     models.PointTypeEarnOrder,
					RefKey:   fmt.Sprintf("order:%d:earn", order.ID),
					RefTable: "orders",
					RefID:    order.ID,
					Reason:   "order payment reward",
				})
				if err != nil {
					return err
				}
			}

		case models.OrderStatusCancelled, models.OrderStatusRefunded:
			if order.PointsUsed > 0 {
				_, err := s.pointsService.Grant(tx, PointsOperation{
					UserID:   order.UserID,
					Amount:   order.PointsUsed,
					Type:     models.PointTypeRefundReversal,
					RefKey:   fmt.Sprintf("order:%d:refund", order.ID),
					RefTable: "orders",
					RefID:    order.ID,
					Reason:   "order " + string(to),
				})
				if err != nil {
					return err
				}
			}
			if wasPaid {
				reward := order.PayableTotal / paidRewardDivisor
				if reward > 0 {
					_, err := s.pointsService.Deduct(tx, PointsOperation{
						UserID:               order.UserID,
						Amount:               reward,
						Type:                 models.PointTypeRefundReversal,
						RefKey:               fmt.Sprintf("order:%d:earn:reversal", order.ID),
						RefTable:             "orders",
						RefID:                order.ID,
						Reason:               "payment reward clawback",
						AllowNegativeBalance: true,
					})
					if err != nil {
						return err
					}
				}
			}

			// Cancellation puts the unit back on the shelf.
			if err := tx.Model(&models.Product{}).
				Where("id = ?", order.ProductID).
				Update("stock", gorm.Expr("stock + ?", order.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var updated models.Order
	if err := db.First(&updated, orderID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *OrderService) GetUserOrders(db *gorm.DB, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
