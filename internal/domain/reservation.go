package domain

import (
	"fmt"
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending  ReservationStatus = "PENDING"
	ReservationStatusApproved ReservationStatus = "APPROVED"
	ReservationStatusCanceled ReservationStatus = "CANCELED"
	ReservationStatusExpired  ReservationStatus = "EXPIRED"
)

// AllReservationStatuses lists every status in lifecycle order.
var AllReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusApproved,
	ReservationStatusCanceled,
	ReservationStatusExpired,
}

// allowedTransitions is the complete transition table. Any pair missing here is rejected.
var allowedTransitions = map[ReservationStatus]map[ReservationStatus]bool{
	ReservationStatusPending: {
		ReservationStatusApproved: true,
		ReservationStatusExpired:  true,
		ReservationStatusCanceled: true,
	},
	ReservationStatusApproved: {
		ReservationStatusCanceled: true,
	},
}

// ParseReservationStatus accepts any letter case.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	st := ReservationStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown reservation status %q", ErrInvalidInput, s)
	}
	return st, nil
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusApproved, ReservationStatusCanceled, ReservationStatusExpired:
		return true
	}
	return false
}

// BlocksSchedule reports whether a reservation in this status occupies its time range.
// Only CANCELED releases the slot.
func (s ReservationStatus) BlocksSchedule() bool {
	return s != ReservationStatusCanceled
}

// CanTransition looks the pair up in the transition table.
func CanTransition(from, to ReservationStatus) bool {
	return allowedTransitions[from][to]
}

// ValidateTransition returns a *TransitionError when the move is not permitted.
func ValidateTransition(from, to ReservationStatus) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// LogAction is the RentalLog action tag recorded when entering a status.
func (s ReservationStatus) LogAction() RentalLogAction {
	switch s {
	case ReservationStatusApproved:
		return RentalLogActionApprove
	case ReservationStatusCanceled:
		return RentalLogActionCancel
	case ReservationStatusExpired:
		return RentalLogActionExpire
	default:
		return RentalLogActionCreate
	}
}

type Reservation struct {
	ID        int64             `json:"id"`
	ItemID    int64             `json:"item_id"`
	UserID    int64             `json:"user_id"`
	Status    ReservationStatus `json:"status"`
	StartAt   time.Time         `json:"start_at"`
	EndAt     time.Time         `json:"end_at"`
	CreatedOn time.Time         `json:"created_on"`
	UpdatedOn time.Time         `json:"updated_on"`
}

func (r *Reservation) Range() TimeRange {
	return TimeRange{Start: r.StartAt, End: r.EndAt}
}

// ReservationView is the flat projection handed to callers outside the core.
type ReservationView struct {
	ID           int64             `json:"id"`
	ItemID       int64             `json:"item_id"`
	UserID       int64             `json:"user_id"`
	UserNickname string            `json:"user_nickname"`
	ItemName     string            `json:"item_name"`
	StartAt      time.Time         `json:"start_at"`
	EndAt        time.Time         `json:"end_at"`
	Status       ReservationStatus `json:"status"`
}

// NewReservationView builds the projection from an already loaded reservation, user and item.
func NewReservationView(r *Reservation, u *User, it *Item) *ReservationView {
	return &ReservationView{
		ID:           r.ID,
		ItemID:       r.ItemID,
		UserID:       r.UserID,
		UserNickname: u.Nickname,
		ItemName:     it.Name,
		StartAt:      r.StartAt,
		EndAt:        r.EndAt,
		Status:       r.Status,
	}
}

// ReservationFilter narrows a search. Nil fields are ignored; set fields are ANDed.
type ReservationFilter struct {
	UserID *int64
	ItemID *int64
}
