package models

import (
	"time"
)

type PointTransactionType string

const (
	PointTypeEarnOrder      PointTransactionType = "earn_order"
	PointTypeSpendOrder     PointTransactionType = "spend_order"
	PointTypeSpendRental    PointTransactionType = "spend_rental"
	PointTypeAdminGrant     PointTransactionType = "admin_grant"
	PointTypeAdminDeduct    PointTransactionType = "admin_deduct"
	PointTypeReviewReward   PointTransactionType = "review_reward"
	PointTypeRefundReversal PointTransactionType = "refund_reversal"
)

type PointTransactionStatus string

const (
	PointStatusConfirmed PointTransactionStatus = "confirmed"
	PointStatusPending   PointTransactionStatus = "pending"
)

// PointTransaction is one immutable ledger entry. Positive amounts are
// credits, negative amounts are debits. Rows are never updated; the only
// delete is the compensating rollback when the cache update fails.
type PointTransaction struct {
	ID     uint                   `json:"id" gorm:"primaryKey"`
	UserID uint                   `json:"user_id" gorm:"not null;index"`
	User   User                   `json:"-"`
	Amount int                    `json:"amount" gorm:"not null"`
	Type   PointTransactionType   `json:"type" gorm:"not null"`
	Status PointTransactionStatus `json:"status" gorm:"not null;default:'confirmed'"`

	// RefKey deduplicates a logical operation across retries. NULL rows do
	// not collide on the unique index.
	RefKey *string `json:"ref_key,omitempty" gorm:"uniqueIndex"`

	// Informational pointer to the originating business object.
	RefTable string `json:"ref_table,omitempty"`
	RefID    uint   `json:"ref_id,omitempty"`

	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
