package postgres

import (
	"context"
	"errors"
	"time"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/logger"
	"reservation-backend/internal/repository"
)

type itemRepository struct {
	db DBTX
}

func NewItemRepository(db DBTX) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemSelect = `SELECT id, name, COALESCE(description, ''), owner_id, manager_id, status, created_on FROM items WHERE id = $1`

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	if it.Status == "" {
		it.Status = domain.ItemStatusAvailable
	}
	query := `INSERT INTO items (name, description, owner_id, manager_id, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	it.CreatedOn = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, it.Name, it.Description, it.OwnerID, it.ManagerID, string(it.Status), it.CreatedOn).Scan(&it.ID)
	if err != nil {
		return classify("insert item", err)
	}
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	return r.get(ctx, "get item", itemSelect, id)
}

func (r *itemRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Item, error) {
	query := itemSelect + ` FOR UPDATE`
	logger.DatabaseCall("lock item", query, "item_id", id)
	it, err := r.get(ctx, "lock item", query, id)
	if errors.Is(err, domain.ErrNotFound) {
		// a missing item is the caller's answer, not a database failure
		logger.DatabaseResult("lock item", 0, nil, "item_id", id, "found", false)
		return nil, err
	}
	logger.DatabaseResult("lock item", 0, err, "item_id", id)
	return it, err
}

func (r *itemRepository) get(ctx context.Context, op, query string, id int64) (*domain.Item, error) {
	it := &domain.Item{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&it.ID, &it.Name, &it.Description, &it.OwnerID, &it.ManagerID, &it.Status, &it.CreatedOn)
	if err != nil {
		return nil, notFoundOr(op, "item", id, err)
	}
	return it, nil
}
