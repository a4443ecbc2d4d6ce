package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/baselinelab/baseline-be/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Each test gets its own in-memory database to avoid cross-test
// interference. TranslateError is on, as in production, so unique
// violations surface as gorm.ErrDuplicatedKey.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.PointTransaction{},
		&models.Product{},
		&models.Racket{},
		&models.Order{},
		&models.RentalOrder{},
		&models.StringingApplication{},
		&models.Review{},
		&models.BoardPost{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, balance, debt int) *models.User {
	t.Helper()
	user := models.User{
		Email:         fmt.Sprintf("user-%s@test.local", strings.ReplaceAll(t.Name(), "/", "-")),
		Password:      "x",
		Name:          "Test User",
		Role:          models.RoleCustomer,
		IsActive:      true,
		PointsBalance: balance,
		PointsDebt:    debt,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}

func ledgerCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}
