package service

import (
	"context"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockRentalLogService
type MockRentalLogService struct {
	mock.Mock
}

func (m *MockRentalLogService) Save(ctx context.Context, repo repository.RentalLogRepository, log *domain.RentalLog) error {
	args := m.Called(ctx, repo, log)
	return args.Error(0)
}

func (m *MockRentalLogService) ListByReservation(ctx context.Context, reservationID int64) ([]domain.RentalLog, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalLog), args.Error(1)
}

// MockReservationRepo
type MockReservationRepo struct {
	mock.Mock
	repository.ReservationRepository
}

func (m *MockReservationRepo) FindConflicting(ctx context.Context, itemID int64, rng domain.TimeRange, excludeID int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, itemID, rng, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
