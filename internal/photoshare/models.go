package photoshare

import "time"

// Privacy levels, mirroring trip privacy semantics.
const (
	PrivacyPublic   = "public"
	PrivacyContacts = "contacts"
	PrivacyPrivate  = "private"
)

type PhotoShare struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	TripID        string    `json:"trip_id,omitempty"`
	DestinationID string    `json:"destination_id,omitempty"`
	Caption       string    `json:"caption,omitempty"`
	Privacy       string    `json:"privacy"`
	Photos        []Photo   `json:"photos"`
	LikeCount     int       `json:"like_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type Photo struct {
	ID       string `json:"id"`
	ShareID  string `json:"share_id"`
	URL      string `json:"photo_url"`
	Position int    `json:"position"`
}

// ShareInput is the payload accepted by Share.
type ShareInput struct {
	TripID        string   `json:"trip_id"`
	DestinationID string   `json:"destination_id"`
	Caption       string   `json:"caption"`
	Privacy       string   `json:"privacy"`
	PhotoURLs     []string `json:"photo_urls"`
}
