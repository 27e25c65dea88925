package memory

import (
	"context"
	"fmt"
	"time"

	"reservation-backend/internal/domain"
)

type userRepository struct {
	tx *tx
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if err := r.tx.writable("insert user"); err != nil {
		return err
	}
	u.ID = r.tx.store.userSeq.Add(1)
	u.CreatedOn = now()
	r.tx.users[u.ID] = *u
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := r.tx.user(id)
	if !ok {
		return nil, domain.NotFoundError("user", id)
	}
	return &u, nil
}

type itemRepository struct {
	tx *tx
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	if err := r.tx.writable("insert item"); err != nil {
		return err
	}
	if _, ok := r.tx.user(it.OwnerID); !ok {
		return domain.NotFoundError("owner", it.OwnerID)
	}
	if _, ok := r.tx.user(it.ManagerID); !ok {
		return domain.NotFoundError("manager", it.ManagerID)
	}
	if it.Status == "" {
		it.Status = domain.ItemStatusAvailable
	}
	if !it.Status.Valid() {
		return fmt.Errorf("%w: unknown item status %q", domain.ErrInvalidInput, it.Status)
	}
	it.ID = r.tx.store.itemSeq.Add(1)
	it.CreatedOn = now()
	r.tx.items[it.ID] = *it
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	it, ok := r.tx.item(id)
	if !ok {
		return nil, domain.NotFoundError("item", id)
	}
	return &it, nil
}

func (r *itemRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Item, error) {
	if _, ok := r.tx.item(id); !ok {
		return nil, domain.NotFoundError("item", id)
	}
	if err := r.tx.lock(ctx, itemKey(id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

type reservationRepository struct {
	tx *tx
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	if err := r.tx.writable("insert reservation"); err != nil {
		return err
	}
	if _, ok := r.tx.item(res.ItemID); !ok {
		return domain.NotFoundError("item", res.ItemID)
	}
	if _, ok := r.tx.user(res.UserID); !ok {
		return domain.NotFoundError("user", res.UserID)
	}
	ts := now()
	res.ID = r.tx.store.reservationSeq.Add(1)
	res.CreatedOn = ts
	res.UpdatedOn = ts
	r.tx.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, ok := r.tx.reservation(id)
	if !ok {
		return nil, domain.NotFoundError("reservation", id)
	}
	return &res, nil
}

func (r *reservationRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	if _, ok := r.tx.reservation(id); !ok {
		return nil, domain.NotFoundError("reservation", id)
	}
	if err := r.tx.lock(ctx, reservationKey(id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	if err := r.tx.writable("update reservation status"); err != nil {
		return err
	}
	res, ok := r.tx.reservation(id)
	if !ok {
		return domain.NotFoundError("reservation", id)
	}
	res.Status = status
	res.UpdatedOn = now()
	r.tx.reservations[id] = res
	return nil
}

func (r *reservationRepository) FindConflicting(ctx context.Context, itemID int64, rng domain.TimeRange, excludeID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, res := range r.tx.allReservations() {
		if res.ItemID != itemID || !res.Status.BlocksSchedule() {
			continue
		}
		if excludeID != 0 && res.ID == excludeID {
			continue
		}
		if res.Range().Overlaps(rng) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *reservationRepository) GetViewByID(ctx context.Context, id int64) (*domain.ReservationView, error) {
	res, ok := r.tx.reservation(id)
	if !ok {
		return nil, domain.NotFoundError("reservation", id)
	}
	v, ok := r.view(res)
	if !ok {
		return nil, domain.NotFoundError("reservation", id)
	}
	return &v, nil
}

func (r *reservationRepository) Search(ctx context.Context, f domain.ReservationFilter) ([]domain.ReservationView, error) {
	views := []domain.ReservationView{}
	for _, res := range r.tx.allReservations() {
		if f.UserID != nil && res.UserID != *f.UserID {
			continue
		}
		if f.ItemID != nil && res.ItemID != *f.ItemID {
			continue
		}
		if v, ok := r.view(res); ok {
			views = append(views, v)
		}
	}
	return views, nil
}

func (r *reservationRepository) ListPendingStartedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, res := range r.tx.allReservations() {
		if res.Status == domain.ReservationStatusPending && !res.StartAt.After(t) {
			out = append(out, res)
		}
	}
	return out, nil
}

// view joins the reservation with its user and item; ok is false when either is missing.
func (r *reservationRepository) view(res domain.Reservation) (domain.ReservationView, bool) {
	u, ok := r.tx.user(res.UserID)
	if !ok {
		return domain.ReservationView{}, false
	}
	it, ok := r.tx.item(res.ItemID)
	if !ok {
		return domain.ReservationView{}, false
	}
	return *domain.NewReservationView(&res, &u, &it), true
}

type rentalLogRepository struct {
	tx *tx
}

func (r *rentalLogRepository) Create(ctx context.Context, l *domain.RentalLog) error {
	if err := r.tx.writable("insert rental log"); err != nil {
		return err
	}
	if _, ok := r.tx.reservation(l.ReservationID); !ok {
		return domain.NotFoundError("reservation", l.ReservationID)
	}
	l.ID = r.tx.store.logSeq.Add(1)
	l.CreatedOn = now()
	r.tx.logs = append(r.tx.logs, *l)
	return nil
}

func (r *rentalLogRepository) ListByReservation(ctx context.Context, reservationID int64) ([]domain.RentalLog, error) {
	return r.tx.logsFor(reservationID), nil
}
