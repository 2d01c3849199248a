package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GTDGit/gtd_storefront/internal/cache"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// TokenKind is the "type" claim that separates customer, admin and refresh
// tokens.
type TokenKind string

const (
	TokenUser    TokenKind = "user"
	TokenAdmin   TokenKind = "admin"
	TokenRefresh TokenKind = "refresh"
)

// Claims are the JWT claims issued by TokenService.
type Claims struct {
	SessionID string    `json:"sid"`
	Type      TokenKind `json:"type"`
	Scope     TokenKind `json:"scope,omitempty"`
	Role      string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is returned on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshStore remembers issued refresh tokens.
type RefreshStore interface {
	Save(ctx context.Context, rec *cache.RefreshRecord) error
	Get(ctx context.Context, id string) (*cache.RefreshRecord, error)
	RevokeSession(ctx context.Context, sessionID string) error
}

// TokenService signs and validates access/refresh token pairs.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RefreshStore
	now        func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, store RefreshStore) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        time.Now,
	}
}

// Issue creates an access token of kind plus a refresh token for session sid.
func (s *TokenService) Issue(ctx context.Context, kind TokenKind, sid, subject, role string) (*TokenPair, error) {
	now := s.now()
	access, err := s.sign(Claims{
		SessionID: sid,
		Type:      kind,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	if err != nil {
		return nil, err
	}

	refreshID, err := utils.GenerateRefreshID()
	if err != nil {
		return nil, fmt.Errorf("generate refresh id: %w", err)
	}
	expires := now.Add(s.refreshTTL)
	refresh, err := s.sign(Claims{
		SessionID: sid,
		Type:      TokenRefresh,
		Scope:     kind,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        refreshID,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, &cache.RefreshRecord{
		ID:        refreshID,
		SessionID: sid,
		Subject:   subject,
		Kind:      string(kind),
		IssuedAt:  now,
		ExpiresAt: expires,
	}); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Validate parses token and checks that it is of the wanted kind.
func (s *TokenService) Validate(token string, want TokenKind) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, utils.ErrInvalidToken
	}
	if claims.Type != want || claims.SessionID == "" {
		return nil, utils.ErrInvalidToken
	}
	return claims, nil
}

// Refresh exchanges a live refresh token for a new access token of the
// scope it was issued for.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, *Claims, error) {
	claims, err := s.Validate(refreshToken, TokenRefresh)
	if err != nil {
		return "", nil, err
	}
	rec, err := s.store.Get(ctx, claims.ID)
	if errors.Is(err, cache.ErrRefreshNotFound) {
		return "", nil, utils.ErrInvalidToken
	}
	if err != nil {
		return "", nil, fmt.Errorf("load refresh token: %w", err)
	}
	if rec.SessionID != claims.SessionID {
		return "", nil, utils.ErrInvalidToken
	}

	now := s.now()
	access := Claims{
		SessionID: claims.SessionID,
		Type:      claims.Scope,
		Role:      claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	signed, err := s.sign(access)
	if err != nil {
		return "", nil, err
	}
	return signed, &access, nil
}

// Revoke forgets the refresh token of session sid.
func (s *TokenService) Revoke(ctx context.Context, sid string) error {
	return s.store.RevokeSession(ctx, sid)
}

func (s *TokenService) sign(c Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
