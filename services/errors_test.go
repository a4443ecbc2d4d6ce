package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{&ValidationError{Field: "phone", Message: "bad"}, "INVALID_INPUT"},
		{ErrInvalidAmount, "INVALID_AMOUNT"},
		{ErrUserNotFound, "USER_NOT_FOUND"},
		{ErrInsufficientPoints, "INSUFFICIENT_POINTS"},
		{ErrRacketUnavailable, "RACKET_UNAVAILABLE"},
		{ErrProductUnavailable, "PRODUCT_UNAVAILABLE"},
		{ErrNotFound, "NOT_FOUND"},
		{ErrConflict, "CONFLICT"},
		{ErrInvalidTransition, "INVALID_TRANSITION"},
		{errors.New("pq: something exploded"), "INTERNAL"},
		{fmt.Errorf("creating rental: %w", ErrInsufficientPoints), "INSUFFICIENT_POINTS"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.code, ErrorCode(tc.err))
	}
}

func TestIsClientError(t *testing.T) {
	require.True(t, IsClientError(ErrInsufficientPoints))
	require.True(t, IsClientError(&ValidationError{Field: "bank", Message: "bad"}))
	require.False(t, IsClientError(ErrUserNotFound))
	require.False(t, IsClientError(errors.New("disk on fire")))
}

func TestIsTransientTxError(t *testing.T) {
	transient := []error{
		errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)"),
		errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"),
		errors.New("database is locked"),
	}
	for _, err := range transient {
		require.True(t, isTransientTxError(err), err.Error())
	}

	require.False(t, isTransientTxError(nil))
	require.False(t, isTransientTxError(ErrInsufficientPoints))
	require.False(t, isTransientTxError(errors.New("duplicated key not allowed")))
}

func TestWithRetryableTransactionRetriesTransientOnly(t *testing.T) {
	db := setupTestDB(t)

	calls := 0
	err := withRetryableTransaction(db, txMaxAttempts, func(tx *gorm.DB) error {
		calls++
		return ErrInsufficientPoints
	})
	require.ErrorIs(t, err, ErrInsufficientPoints)
	require.Equal(t, 1, calls)

	calls = 0
	err = withRetryableTransaction(db, txMaxAttempts, func(tx *gorm.DB) error {
		calls++
		if calls < 2 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	calls = 0
	err = withRetryableTransaction(db, txMaxAttempts, func(tx *gorm.DB) error {
		calls++
		return errors.New("deadlock detected")
	})
	require.Error(t, err)
	require.Equal(t, txMaxAttempts, calls)
}
