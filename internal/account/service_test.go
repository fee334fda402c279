package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-tripgraph/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func profileRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "nickname", "display_name", "avatar", "bio", "location", "website",
		"is_public", "is_verified", "created_at", "follower_count", "following_count", "trip_count",
	})
}

func TestProfileDerivedCounters(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT a.id, a.nickname`).
		WithArgs("acct-1").
		WillReturnRows(profileRows().
			AddRow("acct-1", "bo", "Bo", "https://a/1.png", "hiker", "Bern", "https://bo.example",
				true, false, time.Now(), 12, 7, 3))

	svc := NewService(mock)
	profile, err := svc.Profile(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.FollowerCount != 12 || profile.FollowingCount != 7 || profile.TripCount != 3 {
		t.Fatalf("unexpected counters %+v", profile)
	}
	if profile.Nickname != "bo" || !profile.IsPublic {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestProfileNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT a.id, a.nickname`).
		WithArgs("acct-9").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock)
	if _, err := svc.Profile(context.Background(), "acct-9"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProfilePartialPatch(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT a.id, a.nickname`).
		WithArgs("acct-1").
		WillReturnRows(profileRows().
			AddRow("acct-1", "bo", "Bo", "", "hiker", "Bern", "", true, false, time.Now(), 0, 0, 0))
	mock.ExpectExec(`UPDATE accounts`).
		WithArgs("acct-1", "Bo", "", "", "Bern", "", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	empty := ""
	private := false
	svc := NewService(mock)
	profile, err := svc.UpdateProfile(context.Background(), "acct-1", Patch{
		Bio:      &empty,
		IsPublic: &private,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if profile.Bio != "" || profile.IsPublic {
		t.Fatalf("patch not applied %+v", profile)
	}
	if profile.DisplayName != "Bo" || profile.Location != "Bern" {
		t.Fatalf("untouched fields changed %+v", profile)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
