package trip

import (
	"context"
	"errors"
	"log"
	"time"

	"backend-tripgraph/internal/activity"
	"backend-tripgraph/internal/db"
	"backend-tripgraph/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db         db.Querier
	activities *activity.Store
}

func NewService(db db.Querier, activities *activity.Store) *Service {
	return &Service{db: db, activities: activities}
}

func (s *Service) CreateTrip(ctx context.Context, input Trip) (Trip, error) {
	input.ID = uuid.NewString()
	input.Status = StatusPlanning
	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, name, location, description, status, start_date, end_date, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, input.ID, input.Name, input.Location, input.Description, input.Status,
		timePtr(input.StartDate), timePtr(input.EndDate), input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Trip{}, err
	}
	s.emitTrip(ctx, input.CreatedBy, activity.KindTripCreated, "created a trip", input)
	return input, nil
}

func (s *Service) GetTrip(ctx context.Context, id string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, location, description, status, start_date, end_date, created_by, created_at
		FROM trips WHERE id=$1
	`, id)
	var (
		trip               Trip
		startDate, endDate *time.Time
	)
	err := row.Scan(&trip.ID, &trip.Name, &trip.Location, &trip.Description, &trip.Status,
		&startDate, &endDate, &trip.CreatedBy, &trip.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, apperr.NotFound("trip not found")
	}
	if err != nil {
		return Trip{}, err
	}
	if startDate != nil {
		trip.StartDate = *startDate
	}
	if endDate != nil {
		trip.EndDate = *endDate
	}
	return trip, nil
}

func (s *Service) UpdateTrip(ctx context.Context, callerID, id string, patch Trip) (Trip, error) {
	trip, err := s.GetTrip(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if trip.CreatedBy != callerID {
		return Trip{}, apperr.Unauthorized("only the trip owner can update it")
	}
	if patch.Name != "" {
		trip.Name = patch.Name
	}
	if patch.Location != "" {
		trip.Location = patch.Location
	}
	if patch.Description != "" {
		trip.Description = patch.Description
	}
	if !patch.StartDate.IsZero() {
		trip.StartDate = patch.StartDate
	}
	if !patch.EndDate.IsZero() {
		trip.EndDate = patch.EndDate
	}

	_, err = s.db.Exec(ctx, `
		UPDATE trips
		SET name=$2, location=$3, description=$4, start_date=$5, end_date=$6
		WHERE id=$1
	`, trip.ID, trip.Name, trip.Location, trip.Description, timePtr(trip.StartDate), timePtr(trip.EndDate))
	if err != nil {
		return Trip{}, err
	}
	return trip, nil
}

func (s *Service) DeleteTrip(ctx context.Context, callerID, id string) error {
	trip, err := s.GetTrip(ctx, id)
	if err != nil {
		return err
	}
	if trip.CreatedBy != callerID {
		return apperr.Unauthorized("only the trip owner can delete it")
	}
	// activities referencing the trip stay; the feed degrades their
	// enrichment instead of dropping them.
	_, err = s.db.Exec(ctx, `DELETE FROM trips WHERE id=$1`, id)
	return err
}

func (s *Service) StartTrip(ctx context.Context, callerID, id string) (Trip, error) {
	return s.transition(ctx, callerID, id, StatusPlanning, StatusActive,
		activity.KindTripStarted, "started a trip")
}

func (s *Service) CompleteTrip(ctx context.Context, callerID, id string) (Trip, error) {
	return s.transition(ctx, callerID, id, StatusActive, StatusCompleted,
		activity.KindTripCompleted, "completed a trip")
}

func (s *Service) PublishTrip(ctx context.Context, callerID, id string) (Trip, error) {
	return s.transition(ctx, callerID, id, StatusCompleted, StatusPublished,
		activity.KindTripPublished, "published a trip")
}

// transition advances the lifecycle only from the expected state. A trip in
// any other state conflicts; a retry of an already-applied transition
// therefore reports the conflict rather than emitting twice.
func (s *Service) transition(ctx context.Context, callerID, id, from, to, kind, title string) (Trip, error) {
	trip, err := s.GetTrip(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if trip.CreatedBy != callerID {
		return Trip{}, apperr.Unauthorized("only the trip owner can change its status")
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE trips SET status=$2 WHERE id=$1 AND status=$3
	`, id, to, from)
	if err != nil {
		return Trip{}, err
	}
	if tag.RowsAffected() == 0 {
		return Trip{}, apperr.Conflict("trip is not " + from)
	}
	trip.Status = to
	s.emitTrip(ctx, callerID, kind, title, trip)
	return trip, nil
}

func (s *Service) AddDestination(ctx context.Context, callerID string, input Destination) (Destination, error) {
	trip, err := s.GetTrip(ctx, input.TripID)
	if err != nil {
		return Destination{}, err
	}
	if trip.CreatedBy != callerID {
		return Destination{}, apperr.Unauthorized("only the trip owner can add destinations")
	}
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO destinations (id, trip_id, name, location)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, input.ID, input.TripID, input.Name, input.Location)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Destination{}, err
	}
	s.emitDestination(ctx, callerID, activity.KindDestinationAdded, "added "+input.Name+" to "+trip.Name, trip, input)
	return input, nil
}

func (s *Service) Destinations(ctx context.Context, tripID string) ([]Destination, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, name, COALESCE(location,''), visited, created_at
		FROM destinations WHERE trip_id=$1
		ORDER BY created_at
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var destinations []Destination
	for rows.Next() {
		var d Destination
		if err := rows.Scan(&d.ID, &d.TripID, &d.Name, &d.Location, &d.Visited, &d.CreatedAt); err != nil {
			return nil, err
		}
		destinations = append(destinations, d)
	}
	return destinations, rows.Err()
}

// VisitDestination marks a destination visited. Only the first visit emits
// an activity; repeats are no-ops.
func (s *Service) VisitDestination(ctx context.Context, callerID, tripID, destinationID string) (Destination, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return Destination{}, err
	}
	if trip.CreatedBy != callerID {
		return Destination{}, apperr.Unauthorized("only the trip owner can mark visits")
	}
	row := s.db.QueryRow(ctx, `
		UPDATE destinations SET visited=TRUE
		WHERE id=$1 AND trip_id=$2 AND NOT visited
		RETURNING name, COALESCE(location,''), created_at
	`, destinationID, tripID)
	dest := Destination{ID: destinationID, TripID: tripID, Visited: true}
	err = row.Scan(&dest.Name, &dest.Location, &dest.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.getDestination(ctx, tripID, destinationID)
	}
	if err != nil {
		return Destination{}, err
	}
	s.emitDestination(ctx, callerID, activity.KindDestinationVisited, "visited "+dest.Name, trip, dest)
	return dest, nil
}

func (s *Service) getDestination(ctx context.Context, tripID, destinationID string) (Destination, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, trip_id, name, COALESCE(location,''), visited, created_at
		FROM destinations WHERE id=$1 AND trip_id=$2
	`, destinationID, tripID)
	var d Destination
	err := row.Scan(&d.ID, &d.TripID, &d.Name, &d.Location, &d.Visited, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Destination{}, apperr.NotFound("destination not found")
	}
	if err != nil {
		return Destination{}, err
	}
	return d, nil
}

func (s *Service) emitTrip(ctx context.Context, actorID, kind, title string, trip Trip) {
	if s.activities == nil {
		return
	}
	_, err := s.activities.Append(ctx, activity.Activity{
		ActorID: actorID,
		Kind:    kind,
		Title:   title,
		TripID:  trip.ID,
		Payload: activity.TripPayload{TripName: trip.Name, Location: trip.Location},
	})
	if err != nil {
		log.Printf("trip activity append error: %v", err)
	}
}

func (s *Service) emitDestination(ctx context.Context, actorID, kind, title string, trip Trip, dest Destination) {
	if s.activities == nil {
		return
	}
	_, err := s.activities.Append(ctx, activity.Activity{
		ActorID:       actorID,
		Kind:          kind,
		Title:         title,
		TripID:        trip.ID,
		DestinationID: dest.ID,
		Payload: activity.DestinationPayload{
			TripName:        trip.Name,
			DestinationName: dest.Name,
			Location:        dest.Location,
		},
	})
	if err != nil {
		log.Printf("destination activity append error: %v", err)
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
