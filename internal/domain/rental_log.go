package domain

import "time"

type RentalLogAction string

const (
	RentalLogActionCreate  RentalLogAction = "CREATE"
	RentalLogActionApprove RentalLogAction = "APPROVE"
	RentalLogActionCancel  RentalLogAction = "CANCEL"
	RentalLogActionExpire  RentalLogAction = "EXPIRE"
)

// RentalLog is an append-only audit entry. Rows are never updated or deleted.
type RentalLog struct {
	ID            int64           `json:"id"`
	ReservationID int64           `json:"reservation_id"`
	Message       string          `json:"message"`
	Action        RentalLogAction `json:"action"`
	CreatedOn     time.Time       `json:"created_on"`
}
