package auth

import (
	"context"
	"errors"
	"time"

	"backend-tripgraph/internal/db"
	"backend-tripgraph/internal/shared/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     db,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Account, TokenResponse, error) {
	if req.Email == "" || req.Nickname == "" || req.Password == "" {
		return Account{}, TokenResponse{}, errors.New("email, nickname, password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, TokenResponse{}, err
	}

	account := Account{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Nickname:     req.Nickname,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Avatar:       req.Avatar,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO accounts (id, email, nickname, password_hash, display_name, avatar)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at
	`, account.ID, account.Email, account.Nickname, account.PasswordHash, account.DisplayName, account.Avatar)
	if err := row.Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return Account{}, TokenResponse{}, apperr.Conflict("email or nickname already taken")
		}
		return Account{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, account.ID)
	if err != nil {
		return Account{}, TokenResponse{}, err
	}
	return account, tokens, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Account, TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, nickname, password_hash, COALESCE(display_name,''), COALESCE(avatar,''), created_at, updated_at
		FROM accounts WHERE email = $1
	`, req.Email)

	var account Account
	err := row.Scan(&account.ID, &account.Email, &account.Nickname, &account.PasswordHash,
		&account.DisplayName, &account.Avatar, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, TokenResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return Account{}, TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return Account{}, TokenResponse{}, apperr.Unauthorized("invalid credentials")
	}

	tokens, err := s.GenerateTokens(ctx, account.ID)
	if err != nil {
		return Account{}, TokenResponse{}, err
	}
	return account, tokens, nil
}

func (s *Service) GenerateTokens(ctx context.Context, accountID string) (TokenResponse, error) {
	access, err := s.signToken(accountID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(accountID, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, accountID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	accountID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || accountID != claims.UserID || time.Now().After(expiresAt) {
		return "", apperr.Unauthorized("refresh token invalid")
	}
	return claims.UserID, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *Service) signToken(accountID string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, accountID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, account_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), accountID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT account_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var accountID string
	var expiresAt time.Time
	if err := row.Scan(&accountID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return accountID, expiresAt, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
