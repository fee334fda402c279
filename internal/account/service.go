package account

import (
	"context"
	"errors"

	"backend-tripgraph/internal/db"
	"backend-tripgraph/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Profile(ctx context.Context, accountID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT a.id, a.nickname, COALESCE(a.display_name,''), COALESCE(a.avatar,''),
		       COALESCE(a.bio,''), COALESCE(a.location,''), COALESCE(a.website,''),
		       a.is_public, a.is_verified, a.created_at,
		       (SELECT COUNT(*) FROM follow_edges WHERE target_id=a.id AND status='accepted'),
		       (SELECT COUNT(*) FROM follow_edges WHERE follower_id=a.id AND status='accepted'),
		       (SELECT COUNT(*) FROM trips WHERE created_by=a.id)
		FROM accounts a WHERE a.id=$1
	`, accountID)
	var p Profile
	err := row.Scan(&p.ID, &p.Nickname, &p.DisplayName, &p.Avatar,
		&p.Bio, &p.Location, &p.Website,
		&p.IsPublic, &p.IsVerified, &p.CreatedAt,
		&p.FollowerCount, &p.FollowingCount, &p.TripCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, apperr.NotFound("account not found")
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, accountID string, patch Patch) (Profile, error) {
	profile, err := s.Profile(ctx, accountID)
	if err != nil {
		return Profile{}, err
	}
	if patch.DisplayName != nil {
		profile.DisplayName = *patch.DisplayName
	}
	if patch.Avatar != nil {
		profile.Avatar = *patch.Avatar
	}
	if patch.Bio != nil {
		profile.Bio = *patch.Bio
	}
	if patch.Location != nil {
		profile.Location = *patch.Location
	}
	if patch.Website != nil {
		profile.Website = *patch.Website
	}
	if patch.IsPublic != nil {
		profile.IsPublic = *patch.IsPublic
	}

	_, err = s.db.Exec(ctx, `
		UPDATE accounts
		SET display_name=$2, avatar=$3, bio=$4, location=$5, website=$6, is_public=$7
		WHERE id=$1
	`, accountID, profile.DisplayName, profile.Avatar, profile.Bio,
		profile.Location, profile.Website, profile.IsPublic)
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}
