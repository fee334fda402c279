package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

func TestAppendReturnsIDAndTimestamp(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO activities`).
		WithArgs("acct-1", KindUserFollowed, "started following Bo", "", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), createdAt))

	store := NewStore(mock)
	a, err := store.Append(context.Background(), Activity{
		ActorID: "acct-1",
		Kind:    KindUserFollowed,
		Title:   "started following Bo",
		Payload: FollowPayload{TargetID: "acct-2", TargetName: "Bo"},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if a.ID != 7 || a.CreatedAt.IsZero() {
		t.Fatalf("expected stored id and timestamp")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByActorsDecodesPayloadByKind(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	tripID := "trip-1"
	mock.ExpectQuery(`SELECT id, actor_id, kind, title, description, payload, trip_id, destination_id, created_at`).
		WithArgs([]string{"acct-1", "acct-2"}, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "actor_id", "kind", "title", "description", "payload", "trip_id", "destination_id", "created_at"}).
			AddRow(int64(2), "acct-1", KindPhotoShared, "shared a photo", "", []byte(`{"share_id":"share-1","photo_urls":["https://p/1"],"like_count":0}`), nil, nil, createdAt).
			AddRow(int64(1), "acct-2", KindTripCreated, "created a trip", "", []byte(`{"trip_name":"Alps"}`), &tripID, nil, createdAt.Add(-time.Minute)))

	store := NewStore(mock)
	activities, err := store.ListByActors(context.Background(), []string{"acct-1", "acct-2"}, 10, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("expected two activities")
	}
	photo, ok := activities[0].Payload.(PhotoPayload)
	if !ok || photo.ShareID != "share-1" {
		t.Fatalf("expected photo payload, got %#v", activities[0].Payload)
	}
	trip, ok := activities[1].Payload.(TripPayload)
	if !ok || trip.TripName != "Alps" {
		t.Fatalf("expected trip payload, got %#v", activities[1].Payload)
	}
	if activities[1].TripID != "trip-1" {
		t.Fatalf("expected trip id carried through")
	}
}

func TestListByActorsEmptySet(t *testing.T) {
	store := NewStore(nil)
	activities, err := store.ListByActors(context.Background(), nil, 10, nil)
	if err != nil || activities != nil {
		t.Fatalf("expected empty result without store access")
	}
}

func TestListByActorsCursorPredicate(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	cursorTime := time.Now()
	mock.ExpectQuery(`created_at < \$2 OR \(created_at = \$2 AND id < \$3\)`).
		WithArgs([]string{"acct-1"}, cursorTime, int64(9), 5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "actor_id", "kind", "title", "description", "payload", "trip_id", "destination_id", "created_at"}))

	store := NewStore(mock)
	_, err = store.ListByActor(context.Background(), "acct-1", 5, &Cursor{Time: cursorTime, ID: 9})
	if err != nil {
		t.Fatalf("list with cursor: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByActorsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, actor_id, kind`).
		WithArgs([]string{"acct-1"}, 10).
		WillReturnError(errActivity)

	store := NewStore(mock)
	if _, err := store.ListByActor(context.Background(), "acct-1", 10, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestListByActorsUnknownKind(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, actor_id, kind`).
		WithArgs([]string{"acct-1"}, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "actor_id", "kind", "title", "description", "payload", "trip_id", "destination_id", "created_at"}).
			AddRow(int64(1), "acct-1", "mystery", "?", "", []byte(`{}`), nil, nil, time.Now()))

	store := NewStore(mock)
	if _, err := store.ListByActor(context.Background(), "acct-1", 10, nil); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestDecodePayloadVariants(t *testing.T) {
	dest, err := decodePayload(KindDestinationVisited, []byte(`{"destination_name":"Zermatt","location":"Switzerland"}`))
	if err != nil {
		t.Fatalf("decode destination: %v", err)
	}
	if dest.(DestinationPayload).DestinationName != "Zermatt" {
		t.Fatalf("unexpected destination payload")
	}

	like, err := decodePayload(KindPhotoLiked, []byte(`{"share_id":"s","liker_id":"u","liker_name":"Bo"}`))
	if err != nil {
		t.Fatalf("decode like: %v", err)
	}
	if like.(LikePayload).LikerName != "Bo" {
		t.Fatalf("unexpected like payload")
	}

	if p, err := decodePayload(KindUserFollowed, nil); err != nil || p != nil {
		t.Fatalf("expected nil payload for empty column")
	}
}

var errActivity = errors.New("activity error")
