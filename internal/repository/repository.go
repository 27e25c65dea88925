package repository

import (
	"context"
	"time"

	"reservation-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	// GetForUpdate loads the item and holds a lock on it until the unit of work ends.
	// Create and approve serialize on this lock.
	GetForUpdate(ctx context.Context, id int64) (*domain.Item, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error

	// FindConflicting returns reservations on the item whose status is not CANCELED and
	// whose range overlaps rng. excludeID of 0 excludes nothing.
	FindConflicting(ctx context.Context, itemID int64, rng domain.TimeRange, excludeID int64) ([]domain.Reservation, error)

	GetViewByID(ctx context.Context, id int64) (*domain.ReservationView, error)
	Search(ctx context.Context, filter domain.ReservationFilter) ([]domain.ReservationView, error)
	ListPendingStartedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error)
}

type RentalLogRepository interface {
	Create(ctx context.Context, log *domain.RentalLog) error
	ListByReservation(ctx context.Context, reservationID int64) ([]domain.RentalLog, error)
}

// Repositories is the set of repositories bound to one unit of work.
type Repositories struct {
	Users        UserRepository
	Items        ItemRepository
	Reservations ReservationRepository
	RentalLogs   RentalLogRepository
}

type TxFunc func(ctx context.Context, repos Repositories) error

// Transactor runs a TxFunc as one atomic unit of work. The work commits only when fn
// returns nil and ctx is still live; otherwise every write made through repos is rolled back.
type Transactor interface {
	RunInTx(ctx context.Context, fn TxFunc) error
	ReadOnly(ctx context.Context, fn TxFunc) error
}
