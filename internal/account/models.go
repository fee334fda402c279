package account

import "time"

// Profile is the public view of an account. The three counters are derived
// from live rows on every read, never stored.
type Profile struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	DisplayName string `json:"display_name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty"`
	IsPublic    bool   `json:"is_public"`
	IsVerified  bool   `json:"is_verified"`

	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`
	TripCount      int `json:"trip_count"`

	CreatedAt time.Time `json:"created_at"`
}

// Patch carries the updatable profile fields. Pointers distinguish
// "leave unchanged" from "set empty".
type Patch struct {
	DisplayName *string `json:"display_name"`
	Avatar      *string `json:"avatar"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	Website     *string `json:"website"`
	IsPublic    *bool   `json:"is_public"`
}
