package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-tripgraph/internal/shared/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
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

func TestRegisterAndLogin(t *testing.T) {
	mock := newMock(t)

	createdAt := time.Now().Add(-time.Minute)
	updatedAt := time.Now().Add(-time.Minute)

	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs(pgxmock.AnyArg(), "bo@example.com", "bo", pgxmock.AnyArg(), "Bo", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(createdAt, updatedAt))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	account, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "bo@example.com",
		Nickname:    "bo",
		Password:    "password123",
		DisplayName: "Bo",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.ID == "" || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected account and tokens")
	}

	mock.ExpectQuery(`SELECT id, email, nickname, password_hash`).
		WithArgs("bo@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "nickname", "password_hash", "display_name", "avatar", "created_at", "updated_at"}).
			AddRow(account.ID, account.Email, account.Nickname, account.PasswordHash, account.DisplayName, "", createdAt, updatedAt))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), account.ID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, loginTokens, err := svc.Login(context.Background(), LoginRequest{Email: "bo@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginTokens.AccessToken == "" || loginTokens.RefreshToken == "" {
		t.Fatalf("expected login tokens")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	svc := NewService("test-secret", mock)
	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "bo@example.com",
		Nickname: "bo",
		Password: "password123",
	})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	mock := newMock(t)

	svc := NewService("test-secret", mock)
	if _, _, err := svc.Register(context.Background(), RegisterRequest{Email: "", Nickname: "bo", Password: "p"}); err == nil {
		t.Fatalf("expected error for missing email")
	}
}

func TestLoginInvalidPassword(t *testing.T) {
	mock := newMock(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT id, email, nickname, password_hash`).
		WithArgs("bo@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "nickname", "password_hash", "display_name", "avatar", "created_at", "updated_at"}).
			AddRow("acct-1", "bo@example.com", "bo", string(hash), "", "", time.Now(), time.Now()))

	svc := NewService("test-secret", mock)
	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "bo@example.com", Password: "wrongpassword"})
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestValidateRefreshToken(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "acct-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	tokens, err := svc.GenerateTokens(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	expiresAt := time.Now().Add(5 * time.Minute)
	mock.ExpectQuery(`SELECT account_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "expires_at"}).AddRow("acct-1", expiresAt))

	accountID, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if accountID != "acct-1" {
		t.Fatalf("unexpected account id: %s", accountID)
	}
}

func TestValidateRefreshTokenExpiredRow(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	tokens, err := svc.GenerateTokens(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	mock.ExpectQuery(`SELECT account_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "expires_at"}).
			AddRow("acct-1", time.Now().Add(-time.Minute)))

	if _, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for expired row, got %v", err)
	}
}

func TestValidateAccessToken(t *testing.T) {
	svc := NewService("test-secret", nil)
	token, err := svc.signToken("acct-1", accessTokenTTL)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	accountID, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate access: %v", err)
	}
	if accountID != "acct-1" {
		t.Fatalf("unexpected account id: %s", accountID)
	}

	if _, err := NewService("other-secret", nil).ValidateAccessToken(token); err == nil {
		t.Fatalf("expected failure with wrong secret")
	}
}
