package services

import (
	"log"
	"time"

	"gorm.io/gorm"
)

const txMaxAttempts = 3

// withRetryableTransaction runs fn inside a database transaction and retries
// the whole block on transient transaction errors, up to maxAttempts, with a
// short linearly increasing backoff. Non-transient errors abort immediately.
// The retry policy lives here so business code never loops on its own.
func withRetryableTransaction(db *gorm.DB, maxAttempts int, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = db.Transaction(fn)
		if err == nil || !isTransientTxError(err) {
			return err
		}
		log.Printf("[TX] transient transaction error, attempt %d/%d: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
		}
	}
	return err
}
