package services

import (
	"errors"
	"log"

	"github.com/baselinelab/baseline-be/models"
	"gorm.io/gorm"
)

// PointsService owns the loyalty ledger and the per-user balance/debt cache.
// The ledger is append-only; the cache is only ever touched here, with
// single-statement atomic updates, so concurrent operations cannot race in
// application code.
type PointsService struct{}

func NewPointsService() *PointsService {
	return &PointsService{}
}

type PointsOperation struct {
	UserID   uint
	Amount   int
	Type     models.PointTransactionType
	RefKey   string
	RefTable string
	RefID    uint
	Reason   string

	// AllowNegativeBalance switches Deduct into forced mode: drain the
	// balance to zero and push any shortfall into debt. Used by refund and
	// cancellation clawbacks, which must never fail for insufficient funds.
	AllowNegativeBalance bool
}

type PointsResult struct {
	TransactionID uint `json:"transaction_id"`
	Amount        int  `json:"amount"`
	Duplicated    bool `json:"duplicated,omitempty"`
}

type PointsSummary struct {
	Balance   int `json:"balance"`
	Debt      int `json:"debt"`
	Available int `json:"available"`
}

// Grant credits points to a user. Settlement is debt-first: the incoming
// amount pays down points_debt before anything lands in points_balance, so a
// user cannot accumulate spendable balance while owing a clawback.
//
// A duplicate RefKey means the grant was already applied (retried webhook,
// double submit); that is reported as a duplicated success, not an error.
func (s *PointsService) Grant(db *gorm.DB, op PointsOperation) (*PointsResult, error) {
	if op.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	entry := models.PointTransaction{
		UserID:   op.UserID,
		Amount:   op.Amount,
		Type:     op.Type,
		Status:   models.PointStatusConfirmed,
		RefTable: op.RefTable,
		RefID:    op.RefID,
		Reason:   op.Reason,
	}
	if op.RefKey != "" {
		entry.RefKey = &op.RefKey
	}

	if err := db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &PointsResult{Duplicated: true}, nil
		}
		return nil, err
	}

	// Debt-first settlement in one statement. Both expressions read the
	// pre-update row, on Postgres and SQLite alike.
	res := db.Model(&models.User{}).
		Where("id = ?", op.UserID).
		Updates(map[string]interface{}{
			"points_debt": gorm.Expr(
				"CASE WHEN points_debt >= ? THEN points_debt - ? ELSE 0 END",
				op.Amount, op.Amount),
			"points_balance": gorm.Expr(
				"points_balance + CASE WHEN points_debt >= ? THEN 0 ELSE ? - points_debt END",
				op.Amount, op.Amount),
		})
	if res.Error != nil {
		s.rollbackEntry(db, entry.ID)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		s.rollbackEntry(db, entry.ID)
		return nil, ErrUserNotFound
	}

	return &PointsResult{TransactionID: entry.ID, Amount: op.Amount}, nil
}

// Deduct debits points from a user. The ledger entry is always recorded with
// a negative amount, in forced mode too.
//
// Strict mode (default) requires points_balance >= amount and zero debt; an
// outstanding debt blocks all spending. Forced mode never fails on funds:
// it takes what the balance holds and books the rest as debt.
func (s *PointsService) Deduct(db *gorm.DB, op PointsOperation) (*PointsResult, error) {
	if op.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	entry := models.PointTransaction{
		UserID:   op.UserID,
		Amount:   -op.Amount,
		Type:     op.Type,
		Status:   models.PointStatusConfirmed,
		RefTable: op.RefTable,
		RefID:    op.RefID,
		Reason:   op.Reason,
	}
	if op.RefKey != "" {
		entry.RefKey = &op.RefKey
	}

	if err := db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &PointsResult{Duplicated: true}, nil
		}
		return nil, err
	}

	var res *gorm.DB
	if op.AllowNegativeBalance {
		res = db.Model(&models.User{}).
			Where("id = ?", op.UserID).
			Updates(map[string]interface{}{
				"points_balance": gorm.Expr(
					"CASE WHEN points_balance >= ? THEN points_balance - ? ELSE 0 END",
					op.Amount, op.Amount),
				"points_debt": gorm.Expr(
					"points_debt + CASE WHEN points_balance >= ? THEN 0 ELSE ? - points_balance END",
					op.Amount, op.Amount),
			})
	} else {
		res = db.Model(&models.User{}).
			Where("id = ? AND points_balance >= ? AND points_debt = 0", op.UserID, op.Amount).
			Update("points_balance", gorm.Expr("points_balance - ?", op.Amount))
	}
	if res.Error != nil {
		s.rollbackEntry(db, entry.ID)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		s.rollbackEntry(db, entry.ID)
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", op.UserID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrUserNotFound
		}
		return nil, ErrInsufficientPoints
	}

	return &PointsResult{TransactionID: entry.ID, Amount: -op.Amount}, nil
}

// rollbackEntry compensates a ledger insert whose cache update failed. A
// failed delete is logged, not re-raised: the caller already has the real
// error to report.
func (s *PointsService) rollbackEntry(db *gorm.DB, entryID uint) {
	if err := db.Unscoped().Delete(&models.PointTransaction{}, entryID).Error; err != nil {
		log.Printf("[POINTS] failed to roll back ledger entry %d: %v", entryID, err)
	}
}

// GetBalance returns the cached spendable balance, 0 when the user is
// unknown.
func (s *PointsService) GetBalance(db *gorm.DB, userID uint) (int, error) {
	var user models.User
	if err := db.Select("points_balance", "points_debt").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return user.PointsBalance, nil
}

func (s *PointsService) GetSummary(db *gorm.DB, userID uint) (*PointsSummary, error) {
	var user models.User
	if err := db.Select("points_balance", "points_debt").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &PointsSummary{}, nil
		}
		return nil, err
	}
	available := user.PointsBalance - user.PointsDebt
	if available < 0 {
		available = 0
	}
	return &PointsSummary{
		Balance:   user.PointsBalance,
		Debt:      user.PointsDebt,
		Available: available,
	}, nil
}

const maxHistoryLimit = 50

// ListTransactions returns the user's ledger newest-first. Pagination input
// degrades to defaults instead of erroring: page falls back to 1, limit is
// clamped to 50.
func (s *PointsService) ListTransactions(db *gorm.DB, userID uint, page, limit int) (int64, []models.PointTransaction, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var total int64
	if err := db.Model(&models.PointTransaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.PointTransaction
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}

	return total, items, nil
}
