package domain

import "time"

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "AVAILABLE"
	ItemStatusUnavailable ItemStatus = "UNAVAILABLE"
)

// Valid reports whether s is a known item status. The empty status is not valid.
func (s ItemStatus) Valid() bool {
	return s == ItemStatusAvailable || s == ItemStatusUnavailable
}

type Item struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OwnerID     int64      `json:"owner_id"`
	ManagerID   int64      `json:"manager_id"`
	Status      ItemStatus `json:"status"`
	CreatedOn   time.Time  `json:"created_on"`
}
