package activity

import "time"

// Activity kinds. Each kind pins the payload variant carried by the row.
const (
	KindTripCreated        = "trip_created"
	KindTripStarted        = "trip_started"
	KindTripCompleted      = "trip_completed"
	KindTripPublished      = "trip_published"
	KindTripShared         = "trip_shared"
	KindDestinationAdded   = "destination_added"
	KindDestinationVisited = "destination_visited"
	KindPhotoUploaded      = "photo_uploaded"
	KindPhotoShared        = "photo_shared"
	KindPhotoLiked         = "photo_liked"
	KindUserFollowed       = "user_followed"
)

// Activity is an immutable event record. Rows are append-only; corrections
// are new activities, never edits.
type Activity struct {
	ID            int64     `json:"id"`
	ActorID       string    `json:"actor_id"`
	Kind          string    `json:"kind"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Payload       Payload   `json:"payload,omitempty"`
	TripID        string    `json:"trip_id,omitempty"`
	DestinationID string    `json:"destination_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Payload is the kind-specific context of an activity. The stored column is
// jsonb; the concrete variant is chosen by the activity kind on decode.
type Payload interface {
	isPayload()
}

type TripPayload struct {
	TripName string `json:"trip_name"`
	Location string `json:"location,omitempty"`
}

type DestinationPayload struct {
	TripName        string `json:"trip_name,omitempty"`
	DestinationName string `json:"destination_name"`
	Location        string `json:"location,omitempty"`
}

type PhotoPayload struct {
	ShareID         string   `json:"share_id"`
	Caption         string   `json:"caption,omitempty"`
	PhotoURLs       []string `json:"photo_urls"`
	TripName        string   `json:"trip_name,omitempty"`
	DestinationName string   `json:"destination_name,omitempty"`
	LikeCount       int      `json:"like_count"`
}

type LikePayload struct {
	ShareID   string `json:"share_id"`
	LikerID   string `json:"liker_id"`
	LikerName string `json:"liker_name"`
}

type FollowPayload struct {
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
}

func (TripPayload) isPayload()        {}
func (DestinationPayload) isPayload() {}
func (PhotoPayload) isPayload()       {}
func (LikePayload) isPayload()        {}
func (FollowPayload) isPayload()      {}
