package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/baselinelab/baseline-be/models"
	"gorm.io/gorm"
)

type RentalService struct {
	pointsService *PointsService
}

func NewRentalService() *RentalService {
	return &RentalService{
		pointsService: NewPointsService(),
	}
}

type CreateRentalParams struct {
	UserID       uint
	RacketID     uint
	Days         int
	PickupMethod string
	Bank         string
	Phone        string
	PostalCode   string
	Address      string
	PointsToUse  int

	WithStringing bool
	StringType    string
	Tension       int

	IdempotencyKey string
}

const stringingFee = 20000

func (p CreateRentalParams) validate() error {
	if p.RacketID == 0 {
		return &ValidationError{Field: "racket_id", Message: "required"}
	}
	if p.Days < 1 || p.Days > 30 {
		return &ValidationError{Field: "days", Message: "must be between 1 and 30"}
	}
	if err := validateBank(p.Bank); err != nil {
		return err
	}
	if err := validatePickupMethod(p.PickupMethod); err != nil {
		return err
	}
	if err := validatePhone(p.Phone); err != nil {
		return err
	}
	if p.PickupMethod == "delivery" {
		if err := validatePostalCode(p.PostalCode); err != nil {
			return err
		}
		if p.Address == "" {
			return &ValidationError{Field: "address", Message: "required for delivery"}
		}
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

// CreateRental runs the full checkout workflow: fail-fast validation,
// availability pre-flight, price composition with the points-spend policy,
// then one retryable transaction covering the rental insert, the optional
// stringing draft plus back-reference, and the strict-mode points deduction.
// Either all of those land or none do.
func (s *RentalService) CreateRental(db *gorm.DB, p CreateRentalParams) (*models.RentalOrder, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	// A client retry with the same key gets the original rental back, no
	// re-run.
	if p.IdempotencyKey != "" {
		var existing models.RentalOrder
		err := db.Where("idempotency_key = ?", p.IdempotencyKey).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var racket models.Racket
	if err := db.Where("is_active = ?", true).First(&racket, p.RacketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRacketUnavailable
		}
		return nil, err
	}

	// Pre-flight availability: units not currently reserved by an active
	// rental. Racy by design; the final word is the transaction below.
	available, err := s.AvailableUnits(db, racket)
	if err != nil {
		return nil, err
	}
	if available < 1 {
		return nil, ErrRacketUnavailable
	}

	// Price composition. The deposit is returned on racket return and is
	// therefore never points-eligible.
	fee := racket.DailyFee * p.Days
	strFee := 0
	if p.WithStringing {
		strFee = stringingFee
	}
	total := fee + strFee + racket.Deposit
	eligible := total - racket.Deposit

	spend := roundDownTo100(p.PointsToUse)
	if spend > eligible {
		spend = eligible
	}

	var rental *models.RentalOrder
	err = withRetryableTransaction(db, txMaxAttempts, func(tx *gorm.DB) error {
		r := models.RentalOrder{
			UserID:       p.UserID,
			RacketID:     p.RacketID,
			Days:         p.Days,
			Status:       models.RentalStatusPending,
			Fee:          fee,
			StringingFee: strFee,
			Deposit:      racket.Deposit,
			TotalPrice:   total,
			PointsUsed:   spend,
			PayableTotal: total - spend,
			Bank:         p.Bank,
			PickupMethod: p.PickupMethod,
			Phone:        p.Phone,
			PostalCode:   p.PostalCode,
			Address:      p.Address,
		}
		if p.IdempotencyKey != "" {
			key := p.IdempotencyKey
			r.IdempotencyKey = &key
		}
		if err := tx.Create(&r).Error; err != nil {
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
			if err := tx.Model(&r).Update("application_id", app.ID).Error; err != nil {
				return err
			}
			r.ApplicationID = &app.ID
		}

		if spend > 0 {
			_, err := s.pointsService.Deduct(tx, PointsOperation{
				UserID:   p.UserID,
				Amount:   spend,
				Type:     models.PointTypeSpendRental,
				RefKey:   fmt.Sprintf("rental:%d:spend", r.ID),
				RefTable: "rental_orders",
				RefID:    r.ID,
				Reason:   "racket rental checkout",
			})
			if err != nil {
				return err
			}
		}

		rental = &r
		return nil
	})
	if err != nil {
		// Two concurrent requests with the same key: the loser re-reads the
		// winner's rental.
		if p.IdempotencyKey != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.RentalOrder
			if ferr := db.Where("idempotency_key = ?", p.IdempotencyKey).First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}

	return rental, nil
}

// AvailableUnits computes live availability for a racket:
// base quantity minus rentals still holding a unit.
func (s *RentalService) AvailableUnits(db *gorm.DB, racket models.Racket) (int, error) {
	var active int64
	err := db.Model(&models.RentalOrder{}).
		Where("racket_id = ? AND status IN (?, ?, ?)",
			racket.ID, models.RentalStatusPending, models.RentalStatusPaid, models.RentalStatusOut).
		Count(&active).Error
	if err != nil {
		return 0, err
	}
	return racket.BaseQuantity - int(active), nil
}

var rentalTransitions = map[models.RentalStatus][]models.RentalStatus{
	models.RentalStatusPending: {models.RentalStatusPaid, models.RentalStatusCancelled},
	models.RentalStatusPaid:    {models.RentalStatusOut, models.RentalStatusCancelled},
	models.RentalStatusOut:     {models.RentalStatusReturned},
}

func rentalCanTransition(from, to models.RentalStatus) bool {
	for _, allowed := range rentalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UpdateRentalStatus moves a rental along its lifecycle under the optimistic
// lock. Returned and canceled rentals are terminal and reject any further
// change before the update is attempted.
func (s *RentalService) UpdateRentalStatus(db *gorm.DB, rentalID uint, to models.RentalStatus, clientSeen *time.Time) (*models.RentalOrder, error) {
	var rental models.RentalOrder
	if err := db.First(&rental, rentalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !rentalCanTransition(rental.Status, to) {
		return nil, ErrInvalidTransition
	}

	err := withRetryableTransaction(db, txMaxAttempts, func(tx *gorm.DB) error {
		if err := ApplyOptimisticPatch(tx, &models.RentalOrder{}, rentalID, clientSeen, map[string]interface{}{
			"status": to,
		}); err != nil {
			return err
		}

		// Cancellation restores whatever the customer spent. The refKey
		// makes a re-sent cancel a no-op.
		if to == models.RentalStatusCancelled && rental.PointsUsed > 0 {
			_, err := s.pointsService.Grant(tx, PointsOperation{
				UserID:   rental.UserID,
				Amount:   rental.PointsUsed,
				Type:     models.PointTypeRefundReversal,
				RefKey:   fmt.Sprintf("rental:%d:refund", rental.ID),
				RefTable: "rental_orders",
				RefID:    rental.ID,
				Reason:   "rental canceled",
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var updated models.RentalOrder
	if err := db.First(&updated, rentalID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *RentalService) GetUserRentals(db *gorm.DB, userID uint) ([]models.RentalOrder, error) {
	var rentals []models.RentalOrder
	err := db.Preload("Racket").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rentals).Error
	return rentals, err
}
