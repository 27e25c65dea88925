package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"reservation-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var reservationRowColumns = []string{"id", "item_id", "user_id", "status", "start_at", "end_at", "created_on", "updated_on"}

func TestReservationRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	res := &domain.Reservation{
		ItemID:  2,
		UserID:  3,
		Status:  domain.ReservationStatusPending,
		StartAt: start,
		EndAt:   start.Add(time.Hour),
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO reservations").
			WithArgs(int64(2), int64(3), "PENDING", res.StartAt, res.EndAt, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		err := repo.Create(ctx, res)
		require.NoError(t, err)
		assert.Equal(t, int64(11), res.ID)
		assert.False(t, res.CreatedOn.IsZero())
	})

	t.Run("Exclusion violation is a conflict", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO reservations").
			WillReturnError(&pq.Error{Code: "23P01", Detail: "conflicting key value"})

		err := repo.Create(ctx, &domain.Reservation{ItemID: 2, UserID: 3, Status: domain.ReservationStatusPending, StartAt: start, EndAt: start.Add(time.Hour)})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Foreign key violation is not found", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO reservations").
			WillReturnError(&pq.Error{Code: "23503", Constraint: "reservations_item_id_fkey"})

		err := repo.Create(ctx, &domain.Reservation{ItemID: 99, UserID: 3, Status: domain.ReservationStatusPending, StartAt: start, EndAt: start.Add(time.Hour)})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Other driver errors are storage failures", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO reservations").
			WillReturnError(sql.ErrConnDone)

		err := repo.Create(ctx, &domain.Reservation{ItemID: 2, UserID: 3, Status: domain.ReservationStatusPending, StartAt: start, EndAt: start.Add(time.Hour)})
		assert.ErrorIs(t, err, domain.ErrStorageFailure)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_GetForUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(reservationRowColumns).
			AddRow(1, 2, 3, "APPROVED", now, now.Add(time.Hour), now, now)
		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(1)).
			WillReturnRows(rows)

		res, err := repo.GetForUpdate(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusApproved, res.Status)
		assert.Equal(t, int64(2), res.ItemID)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(reservationRowColumns))

		_, err := repo.GetForUpdate(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_FindConflicting(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	rng := domain.TimeRange{Start: start, End: start.Add(time.Hour)}

	t.Run("Excluding self", func(t *testing.T) {
		rows := sqlmock.NewRows(reservationRowColumns).
			AddRow(4, 5, 3, "PENDING", start.Add(30*time.Minute), start.Add(90*time.Minute), start, start)
		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE \(item_id = \$1 AND status <> \$2 AND start_at < \$3 AND end_at > \$4 AND id <> \$5\) ORDER BY start_at, id`).
			WithArgs(int64(5), "CANCELED", rng.End, rng.Start, int64(9)).
			WillReturnRows(rows)

		got, err := repo.FindConflicting(ctx, 5, rng, 9)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(4), got[0].ID)
	})

	t.Run("Without exclusion", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE \(item_id = \$1 AND status <> \$2 AND start_at < \$3 AND end_at > \$4\) ORDER BY start_at, id`).
			WithArgs(int64(5), "CANCELED", rng.End, rng.Start).
			WillReturnRows(sqlmock.NewRows(reservationRowColumns))

		got, err := repo.FindConflicting(ctx, 5, rng, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_UpdateStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE reservations SET status = \$1, updated_on = \$2 WHERE id = \$3`).
			WithArgs("CANCELED", sqlmock.AnyArg(), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStatus(ctx, 7, domain.ReservationStatusCanceled))
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE reservations`).
			WithArgs("CANCELED", sqlmock.AnyArg(), int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateStatus(ctx, 8, domain.ReservationStatusCanceled), domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

var viewColumns = []string{"id", "item_id", "user_id", "nickname", "name", "start_at", "end_at", "status"}

func TestReservationRepository_Search(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("No filters fetches everything in one joined query", func(t *testing.T) {
		rows := sqlmock.NewRows(viewColumns).
			AddRow(1, 2, 3, "alice", "Projector", now, now.Add(time.Hour), "PENDING").
			AddRow(2, 4, 5, "bob", "Camera", now, now.Add(time.Hour), "APPROVED")
		mock.ExpectQuery(`SELECT r.id, r.item_id, r.user_id, u.nickname, i.name, r.start_at, r.end_at, r.status FROM reservations r JOIN users u ON u.id = r.user_id JOIN items i ON i.id = r.item_id ORDER BY r.start_at, r.id`).
			WillReturnRows(rows)

		got, err := repo.Search(ctx, domain.ReservationFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "alice", got[0].UserNickname)
		assert.Equal(t, "Camera", got[1].ItemName)
	})

	t.Run("User and item filters are ANDed", func(t *testing.T) {
		userID, itemID := int64(3), int64(2)
		mock.ExpectQuery(`FROM reservations r (.+) WHERE \(r.user_id = \$1 AND r.item_id = \$2\)`).
			WithArgs(userID, itemID).
			WillReturnRows(sqlmock.NewRows(viewColumns))

		got, err := repo.Search(ctx, domain.ReservationFilter{UserID: &userID, ItemID: &itemID})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationPredicate(t *testing.T) {
	userID := int64(1)
	itemID := int64(7)

	assert.Empty(t, reservationPredicate(domain.ReservationFilter{}))

	where, args, err := reservationPredicate(domain.ReservationFilter{UserID: &userID, ItemID: &itemID}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(r.user_id = ? AND r.item_id = ?)", where)
	assert.Equal(t, []any{int64(1), int64(7)}, args)

	// each call starts from an empty predicate
	where, args, err = reservationPredicate(domain.ReservationFilter{ItemID: &itemID}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(r.item_id = ?)", where)
	assert.Equal(t, []any{int64(7)}, args)
}
