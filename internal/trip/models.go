package trip

import "time"

// Trip lifecycle. Transitions move strictly forward:
// planning -> active -> completed -> published.
const (
	StatusPlanning  = "planning"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusPublished = "published"
)

type Trip struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	StartDate   time.Time `json:"start_date,omitempty"`
	EndDate     time.Time `json:"end_date,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type Destination struct {
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Visited   bool      `json:"visited"`
	CreatedAt time.Time `json:"created_at"`
}
