package service

import (
	"context"
	"fmt"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/repository"
)

type rentalLogService struct {
	tx repository.Transactor
}

func NewRentalLogService(tx repository.Transactor) RentalLogService {
	return &rentalLogService{tx: tx}
}

func (s *rentalLogService) Save(ctx context.Context, repo repository.RentalLogRepository, l *domain.RentalLog) error {
	if l.ReservationID == 0 {
		return fmt.Errorf("%w: rental log needs a reservation", domain.ErrInvalidInput)
	}
	if l.Action == "" {
		return fmt.Errorf("%w: rental log needs an action", domain.ErrInvalidInput)
	}
	if err := repo.Create(ctx, l); err != nil {
		return fmt.Errorf("failed to append rental log: %w", err)
	}
	return nil
}

func (s *rentalLogService) ListByReservation(ctx context.Context, reservationID int64) ([]domain.RentalLog, error) {
	var logs []domain.RentalLog
	err := s.tx.ReadOnly(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Reservations.GetByID(ctx, reservationID); err != nil {
			return err
		}
		var err error
		logs, err = repos.RentalLogs.ListByReservation(ctx, reservationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}
