package photoshare

import (
	"context"
	"errors"
	"log"

	"backend-tripgraph/internal/activity"
	"backend-tripgraph/internal/db"
	"backend-tripgraph/internal/shared/apperr"
	"backend-tripgraph/internal/stream"

	"github.com/google/uuid"
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

// Share creates a photo share. The "photo shared" activity snapshots the
// trip/destination names at share time, so the feed item survives later
// deletion of its referents; failing to append it never rolls back the share.
func (s *Service) Share(ctx context.Context, authorID string, input ShareInput) (PhotoShare, error) {
	if len(input.PhotoURLs) == 0 {
		return PhotoShare{}, apperr.InvalidTarget("at least one photo required")
	}
	if input.Privacy == "" {
		input.Privacy = PrivacyPublic
	}
	if input.Privacy != PrivacyPublic && input.Privacy != PrivacyContacts && input.Privacy != PrivacyPrivate {
		return PhotoShare{}, apperr.InvalidTarget("unknown privacy level")
	}

	share := PhotoShare{
		ID:            uuid.NewString(),
		AuthorID:      authorID,
		TripID:        input.TripID,
		DestinationID: input.DestinationID,
		Caption:       input.Caption,
		Privacy:       input.Privacy,
	}

	tripName, destName := s.snapshotNames(ctx, input.TripID, input.DestinationID)

	// share row and photo rows commit together, so a share can never be
	// observed without its photos
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return PhotoShare{}, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO photo_shares (id, author_id, trip_id, destination_id, caption, privacy)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, share.ID, authorID, strPtr(input.TripID), strPtr(input.DestinationID), input.Caption, input.Privacy)
	if err := row.Scan(&share.CreatedAt); err != nil {
		_ = tx.Rollback(ctx)
		return PhotoShare{}, err
	}

	for i, url := range input.PhotoURLs {
		photo := Photo{ID: uuid.NewString(), ShareID: share.ID, URL: url, Position: i}
		_, err := tx.Exec(ctx, `
			INSERT INTO photo_share_photos (id, share_id, photo_url, position)
			VALUES ($1,$2,$3,$4)
		`, photo.ID, share.ID, url, i)
		if err != nil {
			_ = tx.Rollback(ctx)
			return PhotoShare{}, err
		}
		share.Photos = append(share.Photos, photo)
	}

	if err := tx.Commit(ctx); err != nil {
		return PhotoShare{}, err
	}

	if s.activities != nil {
		_, err := s.activities.Append(ctx, activity.Activity{
			ActorID:     authorID,
			Kind:        activity.KindPhotoShared,
			Title:       "shared a photo",
			Description: input.Caption,
			Payload: activity.PhotoPayload{
				ShareID:         share.ID,
				Caption:         input.Caption,
				PhotoURLs:       input.PhotoURLs,
				TripName:        tripName,
				DestinationName: destName,
			},
			TripID:        input.TripID,
			DestinationID: input.DestinationID,
		})
		if err != nil {
			log.Printf("photo shared activity append error: %v", err)
		}
	}

	return share, nil
}

// Like adds the (liker, share) edge. Liking twice is a conflict, which
// callers should present as "already liked". A like on someone else's share
// records a "photo liked" activity attributed to the share's author.
func (s *Service) Like(ctx context.Context, likerID, shareID string) error {
	authorID, err := s.shareAuthor(ctx, shareID)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO photo_likes (share_id, account_id)
		VALUES ($1,$2)
	`, shareID, likerID); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("already liked")
		}
		return err
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE photo_shares SET like_count = like_count + 1 WHERE id=$1
	`, shareID); err != nil {
		log.Printf("like count increment error: %v", err)
	}

	if likerID == authorID {
		return nil
	}

	likerName := s.displayName(ctx, likerID)
	if s.activities != nil {
		title := "photo liked"
		if likerName != "" {
			title = likerName + " liked your photo"
		}
		_, err := s.activities.Append(ctx, activity.Activity{
			ActorID: authorID,
			Kind:    activity.KindPhotoLiked,
			Title:   title,
			Payload: activity.LikePayload{ShareID: shareID, LikerID: likerID, LikerName: likerName},
		})
		if err != nil {
			log.Printf("photo liked activity append error: %v", err)
		}
	}
	if s.hub != nil {
		s.hub.Notify(authorID, stream.Event{Kind: "photo_liked", ActorID: likerID, ActorName: likerName, ShareID: shareID})
	}
	return nil
}

// Unlike removes the like edge. Removing a like that does not exist is a
// no-op; the earlier "photo liked" activity stays, activities are immutable.
func (s *Service) Unlike(ctx context.Context, likerID, shareID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM photo_likes WHERE share_id=$1 AND account_id=$2
	`, shareID, likerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE photo_shares SET like_count = like_count - 1 WHERE id=$1 AND like_count > 0
	`, shareID); err != nil {
		log.Printf("like count decrement error: %v", err)
	}
	return nil
}

// Delete removes a share. Only the author may delete.
func (s *Service) Delete(ctx context.Context, callerID, shareID string) error {
	authorID, err := s.shareAuthor(ctx, shareID)
	if err != nil {
		return err
	}
	if authorID != callerID {
		return apperr.Unauthorized("only the author may delete a share")
	}
	_, err = s.db.Exec(ctx, `DELETE FROM photo_shares WHERE id=$1`, shareID)
	return err
}

// Get returns a share if the viewer may see it. Private shares are visible
// only to the author, contacts-only shares to mutual friends.
func (s *Service) Get(ctx context.Context, viewerID, shareID string) (PhotoShare, error) {
	var (
		share  PhotoShare
		tripID *string
		destID *string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, author_id, trip_id, destination_id, caption, privacy, like_count, created_at
		FROM photo_shares WHERE id=$1
	`, shareID).Scan(&share.ID, &share.AuthorID, &tripID, &destID, &share.Caption, &share.Privacy, &share.LikeCount, &share.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PhotoShare{}, apperr.NotFound("share not found")
	}
	if err != nil {
		return PhotoShare{}, err
	}
	if tripID != nil {
		share.TripID = *tripID
	}
	if destID != nil {
		share.DestinationID = *destID
	}

	if !s.visible(ctx, share, viewerID) {
		return PhotoShare{}, apperr.NotFound("share not found")
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, share_id, photo_url, position
		FROM photo_share_photos WHERE share_id=$1
		ORDER BY position
	`, shareID)
	if err != nil {
		return PhotoShare{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.ShareID, &p.URL, &p.Position); err != nil {
			return PhotoShare{}, err
		}
		share.Photos = append(share.Photos, p)
	}
	return share, rows.Err()
}

func (s *Service) visible(ctx context.Context, share PhotoShare, viewerID string) bool {
	switch share.Privacy {
	case PrivacyPublic:
		return true
	case PrivacyPrivate:
		return share.AuthorID == viewerID
	default:
		if share.AuthorID == viewerID {
			return true
		}
		var friends bool
		err := s.db.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM follow_edges a
				JOIN follow_edges b ON a.follower_id = b.target_id AND a.target_id = b.follower_id
				WHERE a.follower_id=$1 AND a.target_id=$2
				  AND a.status='accepted' AND b.status='accepted'
			)
		`, viewerID, share.AuthorID).Scan(&friends)
		if err != nil {
			return false
		}
		return friends
	}
}

func (s *Service) shareAuthor(ctx context.Context, shareID string) (string, error) {
	var authorID string
	err := s.db.QueryRow(ctx, `
		SELECT author_id FROM photo_shares WHERE id=$1
	`, shareID).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.NotFound("share not found")
	}
	if err != nil {
		return "", err
	}
	return authorID, nil
}

// snapshotNames resolves referent names at share time. Lookups are
// best-effort; a missing trip or destination leaves the name empty.
func (s *Service) snapshotNames(ctx context.Context, tripID, destID string) (string, string) {
	var tripName, destName string
	if tripID != "" {
		if err := s.db.QueryRow(ctx, `SELECT name FROM trips WHERE id=$1`, tripID).Scan(&tripName); err != nil {
			tripName = ""
		}
	}
	if destID != "" {
		if err := s.db.QueryRow(ctx, `SELECT name FROM destinations WHERE id=$1`, destID).Scan(&destName); err != nil {
			destName = ""
		}
	}
	return tripName, destName
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

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
