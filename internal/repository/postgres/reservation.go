package postgres

import (
	"context"
	"database/sql"
	"time"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/logger"
	"reservation-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
)

const reservationTable = "reservations"

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var reservationColumns = []string{"id", "item_id", "user_id", "status", "start_at", "end_at", "created_on", "updated_on"}

var reservationViewColumns = []string{"r.id", "r.item_id", "r.user_id", "u.nickname", "i.name", "r.start_at", "r.end_at", "r.status"}

type reservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	now := time.Now().UTC()
	query, args, err := qb.Insert(reservationTable).
		Columns("item_id", "user_id", "status", "start_at", "end_at", "created_on", "updated_on").
		Values(res.ItemID, res.UserID, string(res.Status), res.StartAt, res.EndAt, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return storageError("build insert reservation", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&res.ID); err != nil {
		return classify("insert reservation", err)
	}
	res.CreatedOn = now
	res.UpdatedOn = now
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.getOne(ctx, "get reservation", id, false)
}

func (r *reservationRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.getOne(ctx, "lock reservation", id, true)
}

func (r *reservationRepository) getOne(ctx context.Context, op string, id int64, forUpdate bool) (*domain.Reservation, error) {
	b := qb.Select(reservationColumns...).From(reservationTable).Where(sq.Eq{"id": id})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, storageError("build "+op, err)
	}
	res, err := scanReservation(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(op, "reservation", id, err)
	}
	return res, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	query, args, err := qb.Update(reservationTable).
		Set("status", string(status)).
		Set("updated_on", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return storageError("build update reservation status", err)
	}

	logger.DatabaseCall("update reservation status", query, "reservation_id", id, "status", status)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("update reservation status", 0, err)
		return classify("update reservation status", err)
	}
	n, err := result.RowsAffected()
	logger.DatabaseResult("update reservation status", n, err)
	if err != nil {
		return classify("update reservation status", err)
	}
	if n == 0 {
		return domain.NotFoundError("reservation", id)
	}
	return nil
}

// conflictPredicate matches reservations on itemID that hold any part of rng.
func conflictPredicate(itemID int64, rng domain.TimeRange, excludeID int64) sq.And {
	pred := sq.And{
		sq.Eq{"item_id": itemID},
		sq.NotEq{"status": string(domain.ReservationStatusCanceled)},
		sq.Lt{"start_at": rng.End},
		sq.Gt{"end_at": rng.Start},
	}
	if excludeID != 0 {
		pred = append(pred, sq.NotEq{"id": excludeID})
	}
	return pred
}

func (r *reservationRepository) FindConflicting(ctx context.Context, itemID int64, rng domain.TimeRange, excludeID int64) ([]domain.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationTable).
		Where(conflictPredicate(itemID, rng, excludeID)).
		OrderBy("start_at", "id").
		ToSql()
	if err != nil {
		return nil, storageError("build find conflicting", err)
	}
	return r.list(ctx, "find conflicting reservations", query, args)
}

func (r *reservationRepository) ListPendingStartedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationTable).
		Where(sq.And{
			sq.Eq{"status": string(domain.ReservationStatusPending)},
			sq.LtOrEq{"start_at": t},
		}).
		OrderBy("start_at", "id").
		ToSql()
	if err != nil {
		return nil, storageError("build list pending", err)
	}
	return r.list(ctx, "list stale pending reservations", query, args)
}

// reservationPredicate composes the search filter. It keeps no state between calls.
func reservationPredicate(f domain.ReservationFilter) sq.And {
	pred := sq.And{}
	if f.UserID != nil {
		pred = append(pred, sq.Eq{"r.user_id": *f.UserID})
	}
	if f.ItemID != nil {
		pred = append(pred, sq.Eq{"r.item_id": *f.ItemID})
	}
	return pred
}

func viewQuery() sq.SelectBuilder {
	return qb.Select(reservationViewColumns...).
		From(reservationTable + " r").
		Join("users u ON u.id = r.user_id").
		Join("items i ON i.id = r.item_id")
}

func (r *reservationRepository) GetViewByID(ctx context.Context, id int64) (*domain.ReservationView, error) {
	query, args, err := viewQuery().Where(sq.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, storageError("build get reservation view", err)
	}
	v := &domain.ReservationView{}
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&v.ID, &v.ItemID, &v.UserID, &v.UserNickname, &v.ItemName, &v.StartAt, &v.EndAt, &v.Status)
	if err != nil {
		return nil, notFoundOr("get reservation view", "reservation", id, err)
	}
	return v, nil
}

// Search fetches reservations with their user and item in a single joined query.
func (r *reservationRepository) Search(ctx context.Context, filter domain.ReservationFilter) ([]domain.ReservationView, error) {
	b := viewQuery()
	if pred := reservationPredicate(filter); len(pred) > 0 {
		b = b.Where(pred)
	}
	query, args, err := b.OrderBy("r.start_at", "r.id").ToSql()
	if err != nil {
		return nil, storageError("build search reservations", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("search reservations", err)
	}
	defer rows.Close()

	views := []domain.ReservationView{}
	for rows.Next() {
		var v domain.ReservationView
		if err := rows.Scan(&v.ID, &v.ItemID, &v.UserID, &v.UserNickname, &v.ItemName, &v.StartAt, &v.EndAt, &v.Status); err != nil {
			return nil, classify("scan reservation view", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("search reservations", err)
	}
	return views, nil
}

func (r *reservationRepository) list(ctx context.Context, op, query string, args []any) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	err := row.Scan(&res.ID, &res.ItemID, &res.UserID, &res.Status, &res.StartAt, &res.EndAt, &res.CreatedOn, &res.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return res, nil
}

var _ rowScanner = (*sql.Row)(nil)
