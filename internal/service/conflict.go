package service

import (
	"context"
	"fmt"

	"reservation-backend/internal/domain"
	"reservation-backend/internal/repository"
)

// ConflictChecker rejects ranges already held by another reservation of the same item.
// It must run inside the unit of work that performs the write, after the item lock is taken.
type ConflictChecker struct{}

func NewConflictChecker() *ConflictChecker {
	return &ConflictChecker{}
}

func (c *ConflictChecker) CheckNoConflict(ctx context.Context, repo repository.ReservationRepository, itemID int64, rng domain.TimeRange, excludeID int64) error {
	existing, err := repo.FindConflicting(ctx, itemID, rng, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check conflicts: %w", err)
	}
	if len(existing) == 0 {
		return nil
	}

	ids := make([]int64, len(existing))
	for i, r := range existing {
		ids[i] = r.ID
	}
	return &domain.ConflictError{ItemID: itemID, ConflictingIDs: ids}
}
