// Package memory is an in-process implementation of the repository interfaces.
//
// Writes made inside a unit of work are staged on the transaction and applied to the
// store only at commit, so a failed or canceled unit of work leaves no trace. Item and
// reservation locks are per-key channels held until the unit of work ends, which gives
// the same per-item serialization as row locks in PostgreSQL.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/repository"
)

var errReadOnly = errors.New("write in read-only unit of work")

type Store struct {
	mu           sync.RWMutex
	users        map[int64]domain.User
	items        map[int64]domain.Item
	reservations map[int64]domain.Reservation
	logs         []domain.RentalLog

	userSeq        atomic.Int64
	itemSeq        atomic.Int64
	reservationSeq atomic.Int64
	logSeq         atomic.Int64

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

var _ repository.Transactor = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:        make(map[int64]domain.User),
		items:        make(map[int64]domain.Item),
		reservations: make(map[int64]domain.Reservation),
		locks:        make(map[string]chan struct{}),
	}
}

func (s *Store) RunInTx(ctx context.Context, fn repository.TxFunc) error {
	return s.run(ctx, false, fn)
}

func (s *Store) ReadOnly(ctx context.Context, fn repository.TxFunc) error {
	return s.run(ctx, true, fn)
}

func (s *Store) run(ctx context.Context, readOnly bool, fn repository.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "begin tx", Err: err}
	}

	t := newTx(s, readOnly)
	defer t.release()

	if err := fn(ctx, t.repositories()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "unit of work aborted", Err: err}
	}
	t.commit()
	return nil
}

// RentalLogCount reports the number of committed log entries.
func (s *Store) RentalLogCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}

func (s *Store) lockChan(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// tx holds the staged writes and acquired locks of one unit of work.
type tx struct {
	store    *Store
	readOnly bool

	users        map[int64]domain.User
	items        map[int64]domain.Item
	reservations map[int64]domain.Reservation
	logs         []domain.RentalLog

	held []string
}

func newTx(s *Store, readOnly bool) *tx {
	return &tx{
		store:        s,
		readOnly:     readOnly,
		users:        make(map[int64]domain.User),
		items:        make(map[int64]domain.Item),
		reservations: make(map[int64]domain.Reservation),
	}
}

func (t *tx) repositories() repository.Repositories {
	return repository.Repositories{
		Users:        &userRepository{tx: t},
		Items:        &itemRepository{tx: t},
		Reservations: &reservationRepository{tx: t},
		RentalLogs:   &rentalLogRepository{tx: t},
	}
}

func (t *tx) lock(ctx context.Context, key string) error {
	for _, k := range t.held {
		if k == key {
			return nil
		}
	}
	ch := t.store.lockChan(key)
	select {
	case ch <- struct{}{}:
		t.held = append(t.held, key)
		return nil
	case <-ctx.Done():
		return &domain.StorageError{Op: "lock " + key, Err: ctx.Err()}
	}
}

func (t *tx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		<-t.store.lockChan(t.held[i])
	}
	t.held = nil
}

func (t *tx) writable(op string) error {
	if t.readOnly {
		return &domain.StorageError{Op: op, Err: errReadOnly}
	}
	return nil
}

func (t *tx) commit() {
	if t.readOnly {
		return
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range t.users {
		s.users[id] = u
	}
	for id, it := range t.items {
		s.items[id] = it
	}
	for id, r := range t.reservations {
		s.reservations[id] = r
	}
	s.logs = append(s.logs, t.logs...)
}

func (t *tx) user(id int64) (domain.User, bool) {
	if u, ok := t.users[id]; ok {
		return u, true
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	u, ok := t.store.users[id]
	return u, ok
}

func (t *tx) item(id int64) (domain.Item, bool) {
	if it, ok := t.items[id]; ok {
		return it, true
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	it, ok := t.store.items[id]
	return it, ok
}

func (t *tx) reservation(id int64) (domain.Reservation, bool) {
	if r, ok := t.reservations[id]; ok {
		return r, true
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	r, ok := t.store.reservations[id]
	return r, ok
}

// allReservations merges committed rows with this unit of work's staged rows,
// ordered by start time then id.
func (t *tx) allReservations() []domain.Reservation {
	t.store.mu.RLock()
	merged := make(map[int64]domain.Reservation, len(t.store.reservations)+len(t.reservations))
	for id, r := range t.store.reservations {
		merged[id] = r
	}
	t.store.mu.RUnlock()
	for id, r := range t.reservations {
		merged[id] = r
	}

	out := make([]domain.Reservation, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out
}

func (t *tx) logsFor(reservationID int64) []domain.RentalLog {
	var out []domain.RentalLog
	t.store.mu.RLock()
	for _, l := range t.store.logs {
		if l.ReservationID == reservationID {
			out = append(out, l)
		}
	}
	t.store.mu.RUnlock()
	for _, l := range t.logs {
		if l.ReservationID == reservationID {
			out = append(out, l)
		}
	}
	return out
}

func now() time.Time {
	return time.Now().UTC()
}

func itemKey(id int64) string {
	return fmt.Sprintf("item:%d", id)
}

func reservationKey(id int64) string {
	return fmt.Sprintf("reservation:%d", id)
}
