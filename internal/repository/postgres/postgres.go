package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/logger"
	"reservation-backend/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const defaultTxTimeout = 10 * time.Second

// Store runs units of work against PostgreSQL.
type Store struct {
	db        *sql.DB
	txTimeout time.Duration
}

var _ repository.Transactor = (*Store)(nil)

type Option func(*Store)

// WithTxTimeout bounds how long a single unit of work may run. Zero disables the bound.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.txTimeout = d
	}
}

func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:        db,
		txTimeout: defaultTxTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRepositories binds every repository to q.
func NewRepositories(q DBTX) repository.Repositories {
	return repository.Repositories{
		Users:        NewUserRepository(q),
		Items:        NewItemRepository(q),
		Reservations: NewReservationRepository(q),
		RentalLogs:   NewRentalLogRepository(q),
	}
}

// RunInTx runs fn in a READ COMMITTED transaction. Per-item serialization comes from the
// row locks taken by GetForUpdate, which are released at commit or rollback.
func (s *Store) RunInTx(ctx context.Context, fn repository.TxFunc) error {
	return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

func (s *Store) ReadOnly(ctx context.Context, fn repository.TxFunc) error {
	return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, fn)
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, fn repository.TxFunc) (err error) {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return storageError("begin tx", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		rollback(tx)
		return err
	}
	if err := ctx.Err(); err != nil {
		rollback(tx)
		return storageError("unit of work aborted", err)
	}
	if err := tx.Commit(); err != nil {
		return classify("commit tx", err)
	}
	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Error("Failed to roll back transaction", "error", err)
	}
}

func storageError(op string, err error) error {
	return &domain.StorageError{Op: op, Err: err}
}
