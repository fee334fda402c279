package feed

import (
	"time"

	"backend-tripgraph/internal/activity"
)

// Item is one enriched entry of a feed: either a stored activity or a photo
// share presented as a synthetic "photo shared" activity.
type Item struct {
	ID          int64            `json:"id,omitempty"`
	Kind        string           `json:"kind"`
	ActorID     string           `json:"actor_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Payload     activity.Payload `json:"payload,omitempty"`

	TripID        string `json:"trip_id,omitempty"`
	DestinationID string `json:"destination_id,omitempty"`

	// Enrichment fields, best-effort: absent when the referent is gone.
	TripName            string `json:"trip_name,omitempty"`
	DestinationName     string `json:"destination_name,omitempty"`
	DestinationLocation string `json:"destination_location,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
