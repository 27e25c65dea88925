package postgres

import (
	"context"
	"time"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, nickname, created_on) VALUES ($1, $2, $3) RETURNING id`
	u.CreatedOn = time.Now().UTC()
	if err := r.db.QueryRowContext(ctx, query, u.Email, u.Nickname, u.CreatedOn).Scan(&u.ID); err != nil {
		return classify("insert user", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, nickname, created_on FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Nickname, &u.CreatedOn)
	if err != nil {
		return nil, notFoundOr("get user", "user", id, err)
	}
	return u, nil
}
