package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"reservation-backend/internal/domain"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// classify maps driver errors to the domain error kinds. sql.ErrNoRows is left to the
// caller because only it knows which entity was missing.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgerrcode.ExclusionViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, pqErr.Detail)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, pqErr.Constraint)
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, pqErr.Message)
		}
	}
	return storageError(op, err)
}

func notFoundOr(op, entity string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError(entity, id)
	}
	return classify(op, err)
}
