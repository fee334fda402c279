package relationship

import (
	"context"
	"errors"
	"log"

	"backend-tripgraph/internal/activity"
	"backend-tripgraph/internal/db"
	"backend-tripgraph/internal/shared/apperr"
	"backend-tripgraph/internal/stream"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Service struct {
	db         db.Querier
	activities *activity.Store
	hub        *stream.Hub
}

func NewService(db db.Querier, activities *activity.Store, hub *stream.Hub) *Service {
	return &Service{db: db, activities: activities, hub: hub}
}

// RequestFollow creates a pending edge requester -> target. A declined edge
// is flipped back to pending in place; any other existing edge is a conflict.
func (s *Service) RequestFollow(ctx context.Context, requesterID, targetID string) (FollowEdge, error) {
	if requesterID == targetID {
		return FollowEdge{}, apperr.InvalidTarget("cannot follow yourself")
	}

	edge := FollowEdge{FollowerID: requesterID, TargetID: targetID, Status: StatusPending}

	var status string
	err := s.db.QueryRow(ctx, `
		SELECT status FROM follow_edges
		WHERE follower_id=$1 AND target_id=$2
	`, requesterID, targetID).Scan(&status)
	switch {
	case err == nil:
		if status != StatusDeclined {
			return FollowEdge{}, apperr.Conflict("follow request already exists")
		}
		row := s.db.QueryRow(ctx, `
			UPDATE follow_edges SET status=$3, updated_at=now()
			WHERE follower_id=$1 AND target_id=$2
			RETURNING created_at, updated_at
		`, requesterID, targetID, StatusPending)
		if err := row.Scan(&edge.CreatedAt, &edge.UpdatedAt); err != nil {
			return FollowEdge{}, err
		}
		return edge, nil
	case errors.Is(err, pgx.ErrNoRows):
		row := s.db.QueryRow(ctx, `
			INSERT INTO follow_edges (follower_id, target_id, status)
			VALUES ($1,$2,$3)
			RETURNING created_at, updated_at
		`, requesterID, targetID, StatusPending)
		if err := row.Scan(&edge.CreatedAt, &edge.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return FollowEdge{}, apperr.Conflict("follow request already exists")
			}
			return FollowEdge{}, err
		}
		return edge, nil
	default:
		return FollowEdge{}, err
	}
}

// AcceptFollow marks the pending edge requester -> target accepted. Only the
// edge's target may accept. Accepting an already-accepted edge is a no-op
// success; the "user followed" activity is emitted once, on the transition.
func (s *Service) AcceptFollow(ctx context.Context, callerID, requesterID, targetID string) (FollowEdge, error) {
	if callerID != targetID {
		return FollowEdge{}, apperr.Unauthorized("only the request target may accept")
	}

	edge := FollowEdge{FollowerID: requesterID, TargetID: targetID, Status: StatusAccepted}
	row := s.db.QueryRow(ctx, `
		UPDATE follow_edges SET status=$3, updated_at=now()
		WHERE follower_id=$1 AND target_id=$2 AND status=$4
		RETURNING created_at, updated_at
	`, requesterID, targetID, StatusAccepted, StatusPending)
	err := row.Scan(&edge.CreatedAt, &edge.UpdatedAt)
	if err == nil {
		s.emitFollowed(ctx, requesterID, targetID)
		if s.hub != nil {
			s.hub.Notify(requesterID, stream.Event{Kind: "follow_accepted", ActorID: targetID})
		}
		return edge, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return FollowEdge{}, err
	}

	// no transition: an accepted edge is a retry (success); a declined or
	// missing edge means there is no pending request to accept
	existing, err := s.edge(ctx, requesterID, targetID)
	if err != nil {
		return FollowEdge{}, err
	}
	if existing.Status != StatusAccepted {
		return FollowEdge{}, apperr.NotFound("no pending follow request")
	}
	return existing, nil
}

// DeclineFollow marks the pending edge declined. No activity is emitted; the
// requester may request again later, which reuses the same row.
func (s *Service) DeclineFollow(ctx context.Context, callerID, requesterID, targetID string) (FollowEdge, error) {
	if callerID != targetID {
		return FollowEdge{}, apperr.Unauthorized("only the request target may decline")
	}

	edge := FollowEdge{FollowerID: requesterID, TargetID: targetID, Status: StatusDeclined}
	row := s.db.QueryRow(ctx, `
		UPDATE follow_edges SET status=$3, updated_at=now()
		WHERE follower_id=$1 AND target_id=$2 AND status=$4
		RETURNING created_at, updated_at
	`, requesterID, targetID, StatusDeclined, StatusPending)
	err := row.Scan(&edge.CreatedAt, &edge.UpdatedAt)
	if err == nil {
		return edge, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return FollowEdge{}, err
	}

	existing, err := s.edge(ctx, requesterID, targetID)
	if err != nil {
		return FollowEdge{}, err
	}
	if existing.Status != StatusDeclined {
		return FollowEdge{}, apperr.NotFound("no pending follow request")
	}
	return existing, nil
}

// Unfollow removes the caller's outgoing edge. Deleting a missing edge is a
// no-op so retries stay safe.
func (s *Service) Unfollow(ctx context.Context, callerID, otherID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM follow_edges
		WHERE follower_id=$1 AND target_id=$2
	`, callerID, otherID)
	return err
}

// RemoveFriend deletes both directional edges between the caller and other.
func (s *Service) RemoveFriend(ctx context.Context, callerID, otherID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM follow_edges
		WHERE (follower_id=$1 AND target_id=$2)
		   OR (follower_id=$2 AND target_id=$1)
	`, callerID, otherID)
	return err
}

// Status reads the single directed edge viewer -> target.
func (s *Service) Status(ctx context.Context, viewerID, targetID string) (string, error) {
	if viewerID == targetID {
		return StatusSelf, nil
	}
	var status string
	err := s.db.QueryRow(ctx, `
		SELECT status FROM follow_edges
		WHERE follower_id=$1 AND target_id=$2
	`, viewerID, targetID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return StatusNone, nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

// Relation derives the pair-level state from both directional edges.
func (s *Service) Relation(ctx context.Context, viewerID, targetID string) (string, error) {
	if viewerID == targetID {
		return RelationSelf, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT follower_id, status FROM follow_edges
		WHERE (follower_id=$1 AND target_id=$2)
		   OR (follower_id=$2 AND target_id=$1)
	`, viewerID, targetID)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var outgoing, incoming string
	for rows.Next() {
		var follower, status string
		if err := rows.Scan(&follower, &status); err != nil {
			return "", err
		}
		if follower == viewerID {
			outgoing = status
		} else {
			incoming = status
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch {
	case outgoing == StatusAccepted && incoming == StatusAccepted:
		return RelationFriends, nil
	case outgoing == StatusPending:
		return RelationPendingSent, nil
	case incoming == StatusPending:
		return RelationPendingReceived, nil
	default:
		return RelationNone, nil
	}
}

// AcceptFriendRequest accepts the incoming request and establishes the
// reciprocal accepted edge, so both directions read accepted afterwards. An
// existing reciprocal edge in any other state is promoted, not duplicated.
func (s *Service) AcceptFriendRequest(ctx context.Context, callerID, requesterID, targetID string) error {
	if _, err := s.AcceptFollow(ctx, callerID, requesterID, targetID); err != nil {
		return err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO follow_edges (follower_id, target_id, status)
		VALUES ($1,$2,$3)
		ON CONFLICT (follower_id, target_id)
		DO UPDATE SET status=$3, updated_at=now()
		WHERE follow_edges.status <> $3
		RETURNING created_at
	`, targetID, requesterID, StatusAccepted)
	var created any
	if err := row.Scan(&created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil // reciprocal edge already accepted
		}
		return err
	}
	s.emitFollowed(ctx, targetID, requesterID)
	return nil
}

func (s *Service) edge(ctx context.Context, followerID, targetID string) (FollowEdge, error) {
	edge := FollowEdge{FollowerID: followerID, TargetID: targetID}
	err := s.db.QueryRow(ctx, `
		SELECT status, created_at, updated_at FROM follow_edges
		WHERE follower_id=$1 AND target_id=$2
	`, followerID, targetID).Scan(&edge.Status, &edge.CreatedAt, &edge.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FollowEdge{}, apperr.NotFound("no follow request")
	}
	if err != nil {
		return FollowEdge{}, err
	}
	return edge, nil
}

// emitFollowed records a "user followed" activity attributed to the follower.
// The activity is advisory: failures are logged, never propagated.
func (s *Service) emitFollowed(ctx context.Context, followerID, targetID string) {
	if s.activities == nil {
		return
	}
	name := s.displayName(ctx, targetID)
	title := "started following"
	if name != "" {
		title += " " + name
	}
	_, err := s.activities.Append(ctx, activity.Activity{
		ActorID: followerID,
		Kind:    activity.KindUserFollowed,
		Title:   title,
		Payload: activity.FollowPayload{TargetID: targetID, TargetName: name},
	})
	if err != nil {
		log.Printf("followed activity append error: %v", err)
	}
}

func (s *Service) displayName(ctx context.Context, accountID string) string {
	var name string
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(NULLIF(display_name,''), nickname) FROM accounts WHERE id=$1
	`, accountID).Scan(&name)
	if err != nil {
		return ""
	}
	return name
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
