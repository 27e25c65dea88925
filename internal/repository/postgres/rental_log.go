package postgres

import (
	"context"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/repository"
)

// rentalLogRepository only ever inserts and reads; the table is append-only.
type rentalLogRepository struct {
	db DBTX
}

func NewRentalLogRepository(db DBTX) repository.RentalLogRepository {
	return &rentalLogRepository{db: db}
}

func (r *rentalLogRepository) Create(ctx context.Context, l *domain.RentalLog) error {
	query := `INSERT INTO rental_logs (reservation_id, message, action, created_on)
	          VALUES ($1, $2, $3, NOW()) RETURNING id, created_on`
	err := r.db.QueryRowContext(ctx, query, l.ReservationID, l.Message, string(l.Action)).Scan(&l.ID, &l.CreatedOn)
	if err != nil {
		return classify("insert rental log", err)
	}
	return nil
}

func (r *rentalLogRepository) ListByReservation(ctx context.Context, reservationID int64) ([]domain.RentalLog, error) {
	query := `SELECT id, reservation_id, message, action, created_on FROM rental_logs
	          WHERE reservation_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, classify("list rental logs", err)
	}
	defer rows.Close()

	var logs []domain.RentalLog
	for rows.Next() {
		var l domain.RentalLog
		if err := rows.Scan(&l.ID, &l.ReservationID, &l.Message, &l.Action, &l.CreatedOn); err != nil {
			return nil, classify("scan rental log", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list rental logs", err)
	}
	return logs, nil
}
