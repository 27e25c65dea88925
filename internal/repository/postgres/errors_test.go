package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"reservation-backend/internal/domain"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"exclusion violation", &pq.Error{Code: pgerrcode.ExclusionViolation}, domain.ErrConflict},
		{"foreign key violation", &pq.Error{Code: pgerrcode.ForeignKeyViolation}, domain.ErrNotFound},
		{"check violation", &pq.Error{Code: pgerrcode.CheckViolation}, domain.ErrInvalidInput},
		{"not null violation", &pq.Error{Code: pgerrcode.NotNullViolation}, domain.ErrInvalidInput},
		{"unique violation", &pq.Error{Code: pgerrcode.UniqueViolation}, domain.ErrStorageFailure},
		{"driver error", errors.New("connection reset by peer"), domain.ErrStorageFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify("op", tt.err), tt.want)
		})
	}

	assert.NoError(t, classify("op", nil))
}

func TestNotFoundOr(t *testing.T) {
	assert.ErrorIs(t, notFoundOr("get item", "item", 3, sql.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, notFoundOr("get item", "item", 3, errors.New("timeout")), domain.ErrStorageFailure)
}
