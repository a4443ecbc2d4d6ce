package services

import (
	"testing"

	"github.com/baselinelab/baseline-be/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestRacket(t *testing.T, db *gorm.DB, dailyFee, deposit, quantity int) *models.Racket {
	t.Helper()
	racket := models.Racket{
		Name:         "Test Racket",
		Brand:        "Testbrand",
		DailyFee:     dailyFee,
		Deposit:      deposit,
		BaseQuantity: quantity,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&racket).Error)
	return &racket
}

func validRentalParams(userID, racketID uint) CreateRentalParams {
	return CreateRentalParams{
		UserID:       userID,
		RacketID:     racketID,
		Days:         3,
		PickupMethod: "store",
		Bank:         "kb",
		Phone:        "010-1234-5678",
	}
}

func TestCreateRentalPointsCapScenario(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRentalService()

	// fee 300*3=900, deposit 300: total 1200, only 900 points-eligible.
	user := createTestUser(t, db, 1000, 0)
	racket := createTestRacket(t, db, 300, 300, 1)

	p := validRentalParams(user.ID, racket.ID)
	p.PointsToUse = 1000

	rental, err := svc.CreateRental(db, p)
	require.NoError(t, err)
	require.Equal(t, 1200, rental.TotalPrice)
	require.Equal(t, 300, rental.Deposit)
	// The deposit is excluded from points eligibility, capping the spend.
	require.Equal(t, 900, rental.PointsUsed)
	require.Equal(t, 300, rental.PayableTotal)
	require.Equal(t, models.RentalStatusPending, rental.Status)

	got := reloadUser(t, db, user.ID)
	require.Equal(t, 100, got.PointsBalance)
}

func TestCreateRentalRoundsPointsDown(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRentalService()
	user := createTestUser(t, db, 1000, 0)
	racket := createTestRacket(t, db, 300, 300, 1)

	p := validRentalParams(user.ID, racket.ID)
	p.PointsToUse = 777

	rental, err := svc.CreateRental(db, p)
	require.NoError(t, err)
	require.Equal(t, 700, rental.PointsUsed)
}

// A rejected points deduction must unwind the whole transaction: no rental,
// no stringing application, no ledger entry.
func TestCreateRentalAtomicRollback(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRentalService()

	user := createTestUser(t, db, 100, 0)
	racket := createTestRacket(t, db, 300, 300, 1)

	p := validRentalParams(user.ID, racket.ID)
	p.PointsToUse = 900
	p.WithStringing = true
	p.StringType = "RPM Blast"
	p.Tension = 52

	_, err := svc.CreateRental(db, p)
	require.ErrorIs(t, err, ErrInsufficientPoints)

	var rentals, apps int64
	require.NoError(t, db.Model(&models.RentalOrder{}).Count(&rentals).Error)
	require.NoError(t, db.Model(&models.StringingApplication{}).Count(&apps).Error)
	require.Zero(t, rentals)
	require.Zero(t, apps)
	require.EqualValues(t, 0, ledgerCount(t, db, user.ID))

	got := reloadUser(t, db, user.ID)
	require.Equal(t, 100, got.PointsBalance)
}

func TestCreateRentalWithStringingDraft(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRentalService()
	user := createTestUser(t, db, 0, 0)
	racket := createTestRacket(t, db, 300, 300, 1)

	p := validRentalParams(user.ID, racket.ID)
	p.WithStringing = true
	p.StringType = "RPM Blast"
	p.Tension = 52

	rental, err := svc.CreateRental(db, p)
	require.NoError(t, err)
	require.NotNil(t, rental.ApplicationID)
	require.Equal(t, 900+stringingFee+300, rental.TotalPrice)

	var app models.StringingApplication
	require.NoError(t, db.First(&app, *rental.ApplicationID).Error)
	require.Equal(t, models.ApplicationDraft, app.Status)
	require.Equal(t, user.ID, app.UserID)
}

func TestCreateRentalIdempotencyKey(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRentalService()
	user := createTestUser(t, db, 1000, 0)
	racket := createTestRacket(t, db, 300, 300, 5)

	p := validRentalParams(user.ID, racket.ID)
	p.PointsToUse = 500
	p.IdempotencyKey = "client-key-1"

	first, err := svc.CreateRental(db, p)
	require.NoError(t, err)

	// A client retry returns the original rental and does not spend again.
	second, err := svc.CreateRental(db, p)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var rentals int64
	require.NoError(t, db.Model(&models.RentalOrder{}).Count(&rentals).Error)
	require.EqualValues(t, 1, rentals)

	got := reloadUser(t, db, user.ID)
	require.Equal(t, 500, got.PointsBalance)
}

func TestCreateRentalUnavailable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRentalService()
	userA := createTestUser(t, db, 0, 0)
	racket := createTestRacket(t, db, 300, 300, 1)

	_, err := svc.CreateRental(db, validRentalParams(userA.ID, racket.ID))
	require.NoError(t, err)

	userB := models.User{Email: "second@test.local", Password: "x", Name: "B", IsActive: true}
	require.NoError(t, db.Create(&userB).Error)

	_, err = svc.CreateRental(db, validRentalParams(userB.ID, racket.ID))
	require.ErrorIs(t, err, ErrRacketUnavailable)
}

func TestCreateRentalValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRentalService()
	user := createTestUser(t, db, 0, 0)
	racket := createTestRacket(t, db, 300, 300, 1)

	cases := []struct {
		name   string
		mutate func(*CreateRentalParams)
	}{
		{"bad bank", func(p *CreateRentalParams) { p.Bank = "paypal" }},
		{"bad pickup", func(p *CreateRentalParams) { p.PickupMethod = "drone" }},
		{"bad phone", func(p *CreateRentalParams) { p.Phone = "12345" }},
		{"bad days", func(p *CreateRentalParams) { p.Days = 0 }},
		{"negative points", func(p *CreateRentalParams) { p.PointsToUse = -100 }},
		{"delivery without postal", func(p *CreateRentalParams) {
			p.PickupMethod = "delivery"
			p.PostalCode = "12-45"
		}},
		{"stringing without type", func(p *CreateRentalParams) {
			p.WithStringing = true
			p.Tension = 52
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validRentalParams(user.ID, racket.ID)
			tc.mutate(&p)

			_, err := svc.CreateRental(db, p)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}

	// Nothing was written along the way.
	var rentals int64
	require.NoError(t, db.Model(&models.RentalOrder{}).Count(&rentals).Error)
	require.Zero(t, rentals)
}

func TestCancelRentalRefundsPoints(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRentalService()
	user := createTestUser(t, db, 1000, 0)
	racket := createTestRacket(t, db, 300, 300, 1)

	p := validRentalParams(user.ID, racket.ID)
	p.PointsToUse = 900
	rental, err := svc.CreateRental(db, p)
	require.NoError(t, err)
	require.Equal(t, 100, reloadUser(t, db, user.ID).PointsBalance)

	updated, err := svc.UpdateRentalStatus(db, rental.ID, models.RentalStatusCancelled, nil)
	require.NoError(t, err)
	require.Equal(t, models.RentalStatusCancelled, updated.Status)
	require.Equal(t, 1000, reloadUser(t, db, user.ID).PointsBalance)
}

func TestRentalLifecycleTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRentalService()
	user := createTestUser(t, db, 0, 0)
	racket := createTestRacket(t, db, 300, 300, 1)

	rental, err := svc.CreateRental(db, validRentalParams(user.ID, racket.ID))
	require.NoError(t, err)

	for _, status := range []models.RentalStatus{
		models.RentalStatusPaid,
		models.RentalStatusOut,
		models.RentalStatusReturned,
	} {
		rental, err = svc.UpdateRentalStatus(db, rental.ID, status, nil)
		require.NoError(t, err)
		require.Equal(t, status, rental.Status)
	}

	// Returned is terminal.
	_, err = svc.UpdateRentalStatus(db, rental.ID, models.RentalStatusCancelled, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRentalSkippingStatesRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRentalService()
	user := createTestUser(t, db, 0, 0)
	racket := createTestRacket(t, db, 300, 300, 1)

	rental, err := svc.CreateRental(db, validRentalParams(user.ID, racket.ID))
	require.NoError(t, err)

	_, err = svc.UpdateRentalStatus(db, rental.ID, models.RentalStatusOut, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)
}
