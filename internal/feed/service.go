package feed

import (
	"context"
	"fmt"
	"log"
	"sort"

	"backend-tripgraph/internal/activity"
	"backend-tripgraph/internal/db"
)

type Service struct {
	db         db.Querier
	activities *activity.Store
}

func NewService(db db.Querier, activities *activity.Store) *Service {
	return &Service{db: db, activities: activities}
}

// Feed returns up to limit items visible to the viewer: the viewer's own
// activities and photo shares plus those of accounts the viewer follows with
// an accepted edge. The two source fetches are independent; a failing source
// contributes nothing instead of failing the feed.
func (s *Service) Feed(ctx context.Context, viewerID string, limit int, before *activity.Cursor) ([]Item, error) {
	if limit <= 0 {
		limit = 50
	}
	actors, err := s.eligibleActors(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, viewerID, actors, limit, before), nil
}

// UserFeed is the profile-page variant: source set is the subject alone,
// privacy still applies relative to the viewer.
func (s *Service) UserFeed(ctx context.Context, viewerID, subjectID string, limit int, before *activity.Cursor) []Item {
	if limit <= 0 {
		limit = 50
	}
	return s.assemble(ctx, viewerID, []string{subjectID}, limit, before)
}

func (s *Service) assemble(ctx context.Context, viewerID string, actors []string, limit int, before *activity.Cursor) []Item {
	items := make([]Item, 0, limit)

	activities, err := s.activities.ListByActors(ctx, actors, limit, before)
	if err != nil {
		log.Printf("feed activities fetch error: %v", err)
		activities = nil
	}
	for _, a := range activities {
		items = append(items, Item{
			ID:            a.ID,
			Kind:          a.Kind,
			ActorID:       a.ActorID,
			Title:         a.Title,
			Description:   a.Description,
			Payload:       a.Payload,
			TripID:        a.TripID,
			DestinationID: a.DestinationID,
			CreatedAt:     a.CreatedAt,
		})
	}

	shares, err := s.fetchShares(ctx, viewerID, actors, limit, before)
	if err != nil {
		log.Printf("feed shares fetch error: %v", err)
		shares = nil
	}
	items = append(items, shares...)

	sortItems(items)
	if len(items) > limit {
		items = items[:limit]
	}

	s.enrich(ctx, items)
	return items
}

func (s *Service) eligibleActors(ctx context.Context, viewerID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT target_id FROM follow_edges
		WHERE follower_id=$1 AND status='accepted'
	`, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actors := []string{viewerID}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		actors = append(actors, id)
	}
	return actors, rows.Err()
}

// fetchShares loads photo shares from the actor set the viewer is allowed to
// see and converts them to synthetic "photo shared" items.
func (s *Service) fetchShares(ctx context.Context, viewerID string, actors []string, limit int, before *activity.Cursor) ([]Item, error) {
	query := `
		SELECT s.id, s.author_id, s.trip_id, s.destination_id, s.caption, s.privacy, s.like_count, s.created_at
		FROM photo_shares s
		WHERE s.author_id = ANY($1)
		  AND (s.privacy='public' OR s.author_id=$2
		       OR (s.privacy='contacts' AND EXISTS (
		             SELECT 1 FROM follow_edges a
		             JOIN follow_edges b ON a.follower_id = b.target_id AND a.target_id = b.follower_id
		             WHERE a.follower_id=$2 AND a.target_id=s.author_id
		               AND a.status='accepted' AND b.status='accepted')))`
	args := []any{actors, viewerID}
	if before != nil {
		// Activities tie-break on their bigserial id; shares carry no such id
		// and sort after any activity with the same timestamp. A cursor at an
		// activity (ID > 0) therefore still has its equal-time shares ahead of
		// it; a cursor at a share keeps the strict inequality so the share
		// itself is not served again.
		op := "<"
		if before.ID > 0 {
			op = "<="
		}
		query += ` AND s.created_at ` + op + ` $3`
		args = append(args, before.Time)
	}
	query += fmt.Sprintf(`
		ORDER BY s.created_at DESC
		LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	var shareIDs []string
	payloads := map[string]*activity.PhotoPayload{}
	for rows.Next() {
		var (
			id, authorID, caption, privacy string
			tripID, destID                 *string
			likeCount                      int
			item                           Item
		)
		if err := rows.Scan(&id, &authorID, &tripID, &destID, &caption, &privacy, &likeCount, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Kind = activity.KindPhotoShared
		item.ActorID = authorID
		item.Title = "shared a photo"
		item.Description = caption
		if tripID != nil {
			item.TripID = *tripID
		}
		if destID != nil {
			item.DestinationID = *destID
		}
		payload := &activity.PhotoPayload{ShareID: id, Caption: caption, LikeCount: likeCount}
		payloads[id] = payload
		shareIDs = append(shareIDs, id)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// photo url attachment is its own best-effort step
	if err := s.loadPhotoURLs(ctx, shareIDs, payloads); err != nil {
		log.Printf("feed photo urls fetch error: %v", err)
	}
	for i := range items {
		items[i].Payload = *payloads[shareIDs[i]]
	}
	return items, nil
}

func (s *Service) loadPhotoURLs(ctx context.Context, shareIDs []string, payloads map[string]*activity.PhotoPayload) error {
	if len(shareIDs) == 0 {
		return nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT share_id, photo_url
		FROM photo_share_photos WHERE share_id = ANY($1)
		ORDER BY share_id, position
	`, shareIDs)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var shareID, url string
		if err := rows.Scan(&shareID, &url); err != nil {
			return err
		}
		if p, ok := payloads[shareID]; ok {
			p.PhotoURLs = append(p.PhotoURLs, url)
		}
	}
	return rows.Err()
}

// enrich attaches current trip/destination names. A missing or failing
// lookup leaves the item with only its stored title and payload snapshot.
func (s *Service) enrich(ctx context.Context, items []Item) {
	var tripIDs, destIDs []string
	seenTrips := map[string]bool{}
	seenDests := map[string]bool{}
	for _, item := range items {
		if item.TripID != "" && !seenTrips[item.TripID] {
			seenTrips[item.TripID] = true
			tripIDs = append(tripIDs, item.TripID)
		}
		if item.DestinationID != "" && !seenDests[item.DestinationID] {
			seenDests[item.DestinationID] = true
			destIDs = append(destIDs, item.DestinationID)
		}
	}

	tripNames := map[string]string{}
	if len(tripIDs) > 0 {
		rows, err := s.db.Query(ctx, `
			SELECT id, name FROM trips WHERE id = ANY($1)
		`, tripIDs)
		if err != nil {
			log.Printf("feed trip enrichment error: %v", err)
		} else {
			defer rows.Close()
			for rows.Next() {
				var id, name string
				if err := rows.Scan(&id, &name); err != nil {
					log.Printf("feed trip enrichment scan error: %v", err)
					break
				}
				tripNames[id] = name
			}
		}
	}

	type destInfo struct{ name, location string }
	destNames := map[string]destInfo{}
	if len(destIDs) > 0 {
		rows, err := s.db.Query(ctx, `
			SELECT id, name, COALESCE(location,'') FROM destinations WHERE id = ANY($1)
		`, destIDs)
		if err != nil {
			log.Printf("feed destination enrichment error: %v", err)
		} else {
			defer rows.Close()
			for rows.Next() {
				var id, name, location string
				if err := rows.Scan(&id, &name, &location); err != nil {
					log.Printf("feed destination enrichment scan error: %v", err)
					break
				}
				destNames[id] = destInfo{name: name, location: location}
			}
		}
	}

	for i := range items {
		if name, ok := tripNames[items[i].TripID]; ok {
			items[i].TripName = name
		}
		if info, ok := destNames[items[i].DestinationID]; ok {
			items[i].DestinationName = info.name
			items[i].DestinationLocation = info.location
		}
	}
}

// sortItems orders newest first; on equal timestamps the store-assigned
// activity id wins over synthetic share items.
func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}
