package jobs

import (
	"context"

	"reservation-backend/internal/logger"

	"github.com/google/uuid"
)

// ExpirePendingReservations moves PENDING reservations whose start time has passed to EXPIRED.
func (jr *JobRunner) ExpirePendingReservations() {
	jr.runWithRecovery("ExpirePendingReservations", func() {
		ctx := context.Background()
		log := logger.WithJob("ExpirePendingReservations", uuid.NewString())

		now := jr.now()
		count, err := jr.services.Reservation.ExpireStalePending(ctx, now)
		if err != nil {
			log.Error("Failed to expire pending reservations", "error", err, "expired", count)
			return
		}
		log.Info("Expired pending reservations", "count", count, "cutoff", now)
	})
}
