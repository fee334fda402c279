package relationship

import "time"

// Directed edge statuses as stored.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Synthetic statuses returned by Status for pairs without an edge.
const (
	StatusNone = "none"
	StatusSelf = "self"
)

// Relation is the pair-level view derived from both directional edges.
// It is the single vocabulary follow buttons should render from.
const (
	RelationNone            = "none"
	RelationPendingSent     = "pending_sent"
	RelationPendingReceived = "pending_received"
	RelationFriends         = "friends"
	RelationSelf            = "self"
)

// FollowEdge is the directed relationship from follower to target. At most
// one row exists per ordered (follower, target) pair.
type FollowEdge struct {
	FollowerID string    `json:"follower_id"`
	TargetID   string    `json:"target_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
