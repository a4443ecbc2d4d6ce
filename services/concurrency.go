package services

import (
	"time"

	"gorm.io/gorm"
)

// PatchOutcome names the two reasons an optimistic-concurrency update can
// match zero rows.
type PatchOutcome string

const (
	PatchConflict PatchOutcome = "conflict"
	PatchNotFound PatchOutcome = "not_found"
)

// ClassifyPatchFailure decides what a zero-row optimistic update means.
// Mismatch with a client-supplied token against a still-existing row is a
// concurrent edit; without a token there is no concurrency claim, so the only
// explanation is deletion (or a wrong id).
func ClassifyPatchFailure(hasClientSeenDate, stillExists bool) PatchOutcome {
	if hasClientSeenDate && stillExists {
		return PatchConflict
	}
	return PatchNotFound
}

// ApplyOptimisticPatch runs an update filtered on the document id and, when
// the client supplied the updated_at it last saw, on that token too. A
// zero-row result is re-classified by querying whether the row still exists.
// On success gorm bumps updated_at, so the caller re-reads the document and
// hands the fresh token back to the client.
func ApplyOptimisticPatch(db *gorm.DB, model interface{}, id uint, clientSeen *time.Time, updates map[string]interface{}) error {
	query := db.Model(model).Where("id = ?", id)
	if clientSeen != nil {
		query = query.Where("updated_at = ?", *clientSeen)
	}

	res := query.Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if ClassifyPatchFailure(clientSeen != nil, count > 0) == PatchConflict {
		return ErrConflict
	}
	return ErrNotFound
}
