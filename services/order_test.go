package services

import (
	"fmt"
	"testing"

	"github.com/baselinelab/baseline-be/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestProduct(t *testing.T, db *gorm.DB, price, stock int) *models.Product {
	t.Helper()
	product := models.Product{
		Name:     "Test Product",
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func validOrderParams(userID, productID uint) CreateOrderParams {
	return CreateOrderParams{
		UserID:        userID,
		ProductID:     productID,
		Quantity:      1,
		Bank:          "shinhan",
		DepositorName: "Tester",
		Phone:         "010-9876-5432",
		PostalCode:    "06236",
		Address:       "123 Test-ro",
	}
}

func TestCreateOrderDecrementsStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService()
	user := createTestUser(t, db, 0, 0)
	product := createTestProduct(t, db, 30000, 5)

	p := validOrderParams(user.ID, product.ID)
	p.Quantity = 2

	order, err := svc.CreateOrder(db, p)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, 60000, order.TotalPrice)

	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	require.Equal(t, 3, got.Stock)
}

func TestCreateOrderSpendsPoints(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService()
	user := createTestUser(t, db, 10000, 0)
	product := createTestProduct(t, db, 30000, 5)

	p := validOrderParams(user.ID, product.ID)
	p.PointsToUse = 5050

	order, err := svc.CreateOrder(db, p)
	require.NoError(t, err)
	require.Equal(t, 5000, order.PointsUsed)
	require.Equal(t, 25000, order.PayableTotal)
	require.Equal(t, 5000, reloadUser(t, db, user.ID).PointsBalance)
}

func TestCreateOrderOutOfStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService()
	user := createTestUser(t, db, 0, 0)
	product := createTestProduct(t, db, 30000, 1)

	p := validOrderParams(user.ID, product.ID)
	p.Quantity = 2

	_, err := svc.CreateOrder(db, p)
	require.ErrorIs(t, err, ErrProductUnavailable)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
}

func TestCreateOrderInsufficientPointsRollsBackStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService()
	user := createTestUser(t, db, 100, 0)
	product := createTestProduct(t, db, 30000, 5)

	p := validOrderParams(user.ID, product.ID)
	p.PointsToUse = 5000

	_, err := svc.CreateOrder(db, p)
	require.ErrorIs(t, err, ErrInsufficientPoints)

	// The in-transaction stock decrement was rolled back with the rest.
	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	require.Equal(t, 5, got.Stock)
	require.EqualValues(t, 0, ledgerCount(t, db, user.ID))
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService()
	user := createTestUser(t, db, 0, 0)
	product := createTestProduct(t, db, 30000, 5)

	p := validOrderParams(user.ID, product.ID)
	p.IdempotencyKey = "order-key-1"

	first, err := svc.CreateOrder(db, p)
	require.NoError(t, err)

	second, err := svc.CreateOrder(db, p)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	require.Equal(t, 4, got.Stock)
}

func TestMarkPaidGrantsRewardOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService()
	points := NewPointsService()
	user := createTestUser(t, db, 0, 0)
	product := createTestProduct(t, db, 30000, 5)

	order, err := svc.CreateOrder(db, validOrderParams(user.ID, product.ID))
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(db, order.ID, models.OrderStatusPaid, nil)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, updated.Status)

	// 1% of the payable amount.
	require.Equal(t, 300, reloadUser(t, db, user.ID).PointsBalance)

	// A redelivered payment webhook re-issuing the same refKey grants
	// nothing new.
	result, err := points.Grant(db, PointsOperation{
		UserID: user.ID,
		Amount: 300,
		Type:   models.PointTypeEarnOrder,
		RefKey: fmt.Sprintf("order:%d:earn", order.ID),
	})
	require.NoError(t, err)
	require.True(t, result.Duplicated)
	require.Equal(t, 300, reloadUser(t, db, user.ID).PointsBalance)
}

func TestRefundPaidOrderClawsBackReward(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService()
	user := createTestUser(t, db, 10000, 0)
	product := createTestProduct(t, db, 30000, 5)

	p := validOrderParams(user.ID, product.ID)
	p.PointsToUse = 10000

	order, err := svc.CreateOrder(db, p)
	require.NoError(t, err)
	require.Equal(t, 0, reloadUser(t, db, user.ID).PointsBalance)

	_, err = svc.UpdateOrderStatus(db, order.ID, models.OrderStatusPaid, nil)
	require.NoError(t, err)
	// payable 20000 -> 200 reward
	require.Equal(t, 200, reloadUser(t, db, user.ID).PointsBalance)

	updated, err := svc.UpdateOrderStatus(db, order.ID, models.OrderStatusRefunded, nil)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusRefunded, updated.Status)

	// Spent points restored, reward clawed back, stock returned.
	got := reloadUser(t, db, user.ID)
	require.Equal(t, 10000, got.PointsBalance)
	require.Equal(t, 0, got.PointsDebt)

	var prod models.Product
	require.NoError(t, db.First(&prod, product.ID).Error)
	require.Equal(t, 5, prod.Stock)
}

// When the reward was already spent elsewhere, the clawback books debt
// instead of failing, and the debt blocks further strict spending.
func TestClawbackBooksDebtWhenRewardSpent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService()
	points := NewPointsService()
	user := createTestUser(t, db, 0, 0)
	product := createTestProduct(t, db, 30000, 5)

	order, err := svc.CreateOrder(db, validOrderParams(user.ID, product.ID))
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(db, order.ID, models.OrderStatusPaid, nil)
	require.NoError(t, err)
	require.Equal(t, 300, reloadUser(t, db, user.ID).PointsBalance)

	// Spend the reward.
	_, err = points.Deduct(db, PointsOperation{UserID: user.ID, Amount: 300, Type: models.PointTypeAdminDeduct})
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(db, order.ID, models.OrderStatusRefunded, nil)
	require.NoError(t, err)

	got := reloadUser(t, db, user.ID)
	require.Equal(t, 0, got.PointsBalance)
	require.Equal(t, 300, got.PointsDebt)

	_, err = points.Deduct(db, PointsOperation{UserID: user.ID, Amount: 1, Type: models.PointTypeAdminDeduct})
	require.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestOrderTerminalStatesRejectChanges(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService()
	user := createTestUser(t, db, 0, 0)
	product := createTestProduct(t, db, 30000, 5)

	order, err := svc.CreateOrder(db, validOrderParams(user.ID, product.ID))
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(db, order.ID, models.OrderStatusCancelled, nil)
	require.NoError(t, err)

	for _, status := range []models.OrderStatus{
		models.OrderStatusPaid,
		models.OrderStatusShipping,
		models.OrderStatusRefunded,
	} {
		_, err = svc.UpdateOrderStatus(db, order.ID, status, nil)
		require.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestOrderStatusUnknownTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService()

	_, err := svc.UpdateOrderStatus(db, 9999, models.OrderStatusPaid, nil)
	require.ErrorIs(t, err, ErrNotFound)
}
