package activity

import (
	"context"
	"fmt"
	"time"

	"backend-tripgraph/internal/db"
)

type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

// Cursor identifies the last item a caller has seen. Listing with a cursor
// returns only rows strictly older than it.
type Cursor struct {
	Time time.Time
	ID   int64
}

func (s *Store) Append(ctx context.Context, input Activity) (Activity, error) {
	payload, err := encodePayload(input.Payload)
	if err != nil {
		return Activity{}, err
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO activities (actor_id, kind, title, description, payload, trip_id, destination_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at
	`, input.ActorID, input.Kind, input.Title, input.Description, payload, strPtr(input.TripID), strPtr(input.DestinationID))
	if err := row.Scan(&input.ID, &input.CreatedAt); err != nil {
		return Activity{}, err
	}
	return input, nil
}

// ListByActors returns activities of the given actors, newest first, id
// descending on equal timestamps.
func (s *Store) ListByActors(ctx context.Context, actorIDs []string, limit int, before *Cursor) ([]Activity, error) {
	if len(actorIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, actor_id, kind, title, description, payload, trip_id, destination_id, created_at
		FROM activities
		WHERE actor_id = ANY($1)`
	args := []any{actorIDs}
	if before != nil {
		query += ` AND (created_at < $2 OR (created_at = $2 AND id < $3))`
		args = append(args, before.Time, before.ID)
	}
	query += fmt.Sprintf(`
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var (
			a       Activity
			payload []byte
			tripID  *string
			destID  *string
		)
		if err := rows.Scan(&a.ID, &a.ActorID, &a.Kind, &a.Title, &a.Description, &payload, &tripID, &destID, &a.CreatedAt); err != nil {
			return nil, err
		}
		if a.Payload, err = decodePayload(a.Kind, payload); err != nil {
			return nil, err
		}
		if tripID != nil {
			a.TripID = *tripID
		}
		if destID != nil {
			a.DestinationID = *destID
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *Store) ListByActor(ctx context.Context, actorID string, limit int, before *Cursor) ([]Activity, error) {
	return s.ListByActors(ctx, []string{actorID}, limit, before)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
