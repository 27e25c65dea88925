package service

import (
	"context"
	"errors"
	"time"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/repository"
)

type ReservationService interface {
	CreateReservation(ctx context.Context, itemID, userID int64, start, end time.Time) (*domain.ReservationView, error)
	UpdateReservationStatus(ctx context.Context, reservationID int64, status domain.ReservationStatus) (*domain.ReservationView, error)
	Search(ctx context.Context, userID, itemID *int64) ([]domain.ReservationView, error)
	GetReservations(ctx context.Context) ([]domain.ReservationView, error)
	GetReservation(ctx context.Context, reservationID int64) (*domain.ReservationView, error)
	ExpireStalePending(ctx context.Context, now time.Time) (int, error)
}

type RentalLogService interface {
	// Save appends to the log through repo, which belongs to the caller's unit of work.
	Save(ctx context.Context, repo repository.RentalLogRepository, log *domain.RentalLog) error
	ListByReservation(ctx context.Context, reservationID int64) ([]domain.RentalLog, error)
}

// isBusinessOutcome reports whether err is an expected answer rather than a failure.
func isBusinessOutcome(err error) bool {
	return errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound)
}
