package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/logger"
	"reservation-backend/internal/repository"
)

type reservationService struct {
	tx      repository.Transactor
	checker *ConflictChecker
	logs    RentalLogService
}

func NewReservationService(tx repository.Transactor, logs RentalLogService) ReservationService {
	return &reservationService{
		tx:      tx,
		checker: NewConflictChecker(),
		logs:    logs,
	}
}

// CreateReservation books itemID for userID over [start, end). The item lock, conflict
// check, insert and first log entry all happen in one unit of work.
func (s *reservationService) CreateReservation(ctx context.Context, itemID, userID int64, start, end time.Time) (*domain.ReservationView, error) {
	const method = "ReservationService.CreateReservation"
	logger.EnterMethod(method, "item_id", itemID, "user_id", userID, "start", start, "end", end)

	rng, err := domain.NewTimeRange(start, end)
	if err != nil {
		logger.ExitMethodWithError(method, err, true)
		return nil, err
	}

	var view *domain.ReservationView
	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		item, err := repos.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if err := s.checker.CheckNoConflict(ctx, repos.Reservations, itemID, rng, 0); err != nil {
			return err
		}

		res := &domain.Reservation{
			ItemID:  itemID,
			UserID:  userID,
			Status:  domain.ReservationStatusPending,
			StartAt: rng.Start,
			EndAt:   rng.End,
		}
		if err := repos.Reservations.Create(ctx, res); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		entry := &domain.RentalLog{
			ReservationID: res.ID,
			Message: fmt.Sprintf("%s reserved %s from %s to %s", user.Nickname, item.Name,
				rng.Start.Format(time.RFC3339), rng.End.Format(time.RFC3339)),
			Action: domain.RentalLogActionCreate,
		}
		if err := s.logs.Save(ctx, repos.RentalLogs, entry); err != nil {
			return err
		}

		view = domain.NewReservationView(res, user, item)
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, isBusinessOutcome(err), "item_id", itemID)
		return nil, err
	}

	logger.ExitMethod(method, "reservation_id", view.ID)
	return view, nil
}

// UpdateReservationStatus moves a reservation through the transition table. The status
// name is matched case-insensitively. Approval re-validates the schedule under the item
// lock, ignoring the reservation itself.
func (s *reservationService) UpdateReservationStatus(ctx context.Context, reservationID int64, status domain.ReservationStatus) (*domain.ReservationView, error) {
	const method = "ReservationService.UpdateReservationStatus"
	logger.EnterMethod(method, "reservation_id", reservationID, "status", status)

	status, err := domain.ParseReservationStatus(string(status))
	if err != nil {
		logger.ExitMethodWithError(method, err, true)
		return nil, err
	}

	var view *domain.ReservationView
	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		res, err := repos.Reservations.GetForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := domain.ValidateTransition(res.Status, status); err != nil {
			return err
		}

		if status == domain.ReservationStatusApproved {
			if _, err := repos.Items.GetForUpdate(ctx, res.ItemID); err != nil {
				return err
			}
			if err := s.checker.CheckNoConflict(ctx, repos.Reservations, res.ItemID, res.Range(), res.ID); err != nil {
				return err
			}
		}

		if err := repos.Reservations.UpdateStatus(ctx, res.ID, status); err != nil {
			return fmt.Errorf("failed to update reservation status: %w", err)
		}

		entry := &domain.RentalLog{
			ReservationID: res.ID,
			Message:       fmt.Sprintf("status changed from %s to %s", res.Status, status),
			Action:        status.LogAction(),
		}
		if err := s.logs.Save(ctx, repos.RentalLogs, entry); err != nil {
			return err
		}

		view, err = repos.Reservations.GetViewByID(ctx, res.ID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, isBusinessOutcome(err), "reservation_id", reservationID)
		return nil, err
	}

	logger.ExitMethod(method, "reservation_id", reservationID, "status", view.Status)
	return view, nil
}

// Search returns reservations matching every non-nil filter, each joined with its
// user nickname and item name in a single fetch.
func (s *reservationService) Search(ctx context.Context, userID, itemID *int64) ([]domain.ReservationView, error) {
	return s.search(ctx, domain.ReservationFilter{UserID: userID, ItemID: itemID})
}

func (s *reservationService) GetReservations(ctx context.Context) ([]domain.ReservationView, error) {
	return s.search(ctx, domain.ReservationFilter{})
}

func (s *reservationService) search(ctx context.Context, filter domain.ReservationFilter) ([]domain.ReservationView, error) {
	var views []domain.ReservationView
	err := s.tx.ReadOnly(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		views, err = repos.Reservations.Search(ctx, filter)
		return err
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to search reservations", "error", err)
		return nil, err
	}
	return views, nil
}

func (s *reservationService) GetReservation(ctx context.Context, reservationID int64) (*domain.ReservationView, error) {
	var view *domain.ReservationView
	err := s.tx.ReadOnly(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		view, err = repos.Reservations.GetViewByID(ctx, reservationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ExpireStalePending expires every PENDING reservation whose start is at or before now.
// Each reservation is expired in its own unit of work; one that moved on concurrently
// is skipped.
func (s *reservationService) ExpireStalePending(ctx context.Context, now time.Time) (int, error) {
	var stale []domain.Reservation
	err := s.tx.ReadOnly(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		stale, err = repos.Reservations.ListPendingStartedBefore(ctx, now)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list stale reservations: %w", err)
	}

	expired := 0
	for _, r := range stale {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		_, err := s.UpdateReservationStatus(ctx, r.ID, domain.ReservationStatusExpired)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrNotFound):
			logger.WithReservation(r.ID).Info("Skipped expiring reservation", "reason", err)
		default:
			return expired, fmt.Errorf("failed to expire reservation %d: %w", r.ID, err)
		}
	}
	return expired, nil
}
