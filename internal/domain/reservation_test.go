package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransition_Table(t *testing.T) {
	allowed := map[[2]ReservationStatus]bool{
		{ReservationStatusPending, ReservationStatusApproved}:  true,
		{ReservationStatusPending, ReservationStatusExpired}:   true,
		{ReservationStatusPending, ReservationStatusCanceled}:  true,
		{ReservationStatusApproved, ReservationStatusCanceled}: true,
	}

	for _, from := range AllReservationStatuses {
		for _, to := range AllReservationStatuses {
			from, to := from, to
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				err := ValidateTransition(from, to)
				if allowed[[2]ReservationStatus{from, to}] {
					assert.NoError(t, err)
					return
				}
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTransition))

				var te *TransitionError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, from, te.From)
				assert.Equal(t, to, te.To)
			})
		}
	}
}

func TestValidateTransition_ApprovedCannotExpire(t *testing.T) {
	err := ValidateTransition(ReservationStatusApproved, ReservationStatusExpired)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestParseReservationStatus(t *testing.T) {
	st, err := ParseReservationStatus(" approved ")
	require.NoError(t, err)
	assert.Equal(t, ReservationStatusApproved, st)

	_, err = ParseReservationStatus("RETURNED")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReservationStatus_Predicates(t *testing.T) {
	assert.False(t, ReservationStatusCanceled.BlocksSchedule())
	assert.True(t, ReservationStatusExpired.BlocksSchedule())

	assert.Equal(t, RentalLogActionApprove, ReservationStatusApproved.LogAction())
	assert.Equal(t, RentalLogActionExpire, ReservationStatusExpired.LogAction())
}

func TestErrors(t *testing.T) {
	err := &ConflictError{ItemID: 7, ConflictingIDs: []int64{3, 4}}
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "[3, 4]")

	storage := &StorageError{Op: "insert reservation", Err: errors.New("connection reset")}
	assert.ErrorIs(t, storage, ErrStorageFailure)
	assert.NotErrorIs(t, storage, ErrConflict)

	assert.ErrorIs(t, NotFoundError("item", 9), ErrNotFound)
}
