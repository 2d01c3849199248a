package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// DemoAdminPasswords maps the seeded admin ids to their demo passwords.
func DemoAdminPasswords() map[int]string {
	return map[int]string{
		1: "admin123",
		2: "operator123",
	}
}

// AdminLoginResult is returned by a successful back-office login.
type AdminLoginResult struct {
	Tokens *TokenPair           `json:"tokens"`
	Admin  models.AdminIdentity `json:"admin"`
}

// AdminAuthService checks back-office credentials and manages admin sessions.
type AdminAuthService struct {
	sessions *store.AdminSessionRegistry
	admin    *store.AdminStore
	tokens   *TokenService
	creds    *credentialBook
}

// NewAdminAuthService hashes the given passwords, keyed by admin id.
func NewAdminAuthService(sessions *store.AdminSessionRegistry, admin *store.AdminStore, tokens *TokenService, passwords map[int]string) (*AdminAuthService, error) {
	s := &AdminAuthService{
		sessions: sessions,
		admin:    admin,
		tokens:   tokens,
		creds:    newCredentialBook(0),
	}
	for id, pw := range passwords {
		if err := s.SetPassword(id, pw); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Login verifies username and password against the admin user collection.
func (s *AdminAuthService) Login(ctx context.Context, username, password string) (*AdminLoginResult, error) {
	username = strings.TrimSpace(username)
	log.Debug().Str("username", username).Msg("Admin login attempt")

	user, ok := s.admin.FindAdminUserByUsername(username)
	if !ok {
		s.creds.verify("", password)
		log.Warn().Str("username", username).Msg("Unknown admin username")
		return nil, utils.ErrInvalidCredentials
	}
	if user.Status != models.StatusActive {
		log.Warn().Str("username", username).Msg("Admin account is inactive")
		return nil, utils.ErrInvalidCredentials
	}
	if !s.creds.verify(credentialKey(user.ID), password) {
		log.Warn().Str("username", username).Msg("Admin password verification failed")
		return nil, utils.ErrInvalidCredentials
	}

	identity := models.AdminIdentity{ID: user.ID, Username: user.Username, Name: user.Name, Role: user.Role}
	sid := uuid.NewString()
	tokens, err := s.tokens.Issue(ctx, TokenAdmin, sid, credentialKey(user.ID), string(user.Role))
	if err != nil {
		return nil, err
	}
	s.sessions.Open(sid).Login(identity)

	log.Info().Str("username", username).Str("role", string(user.Role)).Msg("Admin login successful")
	return &AdminLoginResult{Tokens: tokens, Admin: identity}, nil
}

// Authenticate validates an admin access token and returns the identity of
// its live session.
func (s *AdminAuthService) Authenticate(token string) (*Claims, models.AdminIdentity, error) {
	claims, err := s.tokens.Validate(token, TokenAdmin)
	if err != nil {
		return nil, models.AdminIdentity{}, err
	}
	sess, ok := s.sessions.Get(claims.SessionID)
	if !ok {
		return nil, models.AdminIdentity{}, utils.ErrInvalidToken
	}
	state := sess.State()
	if !state.LoggedIn || state.Admin == nil {
		return nil, models.AdminIdentity{}, utils.ErrInvalidToken
	}
	return claims, *state.Admin, nil
}

// Refresh exchanges an admin refresh token for a new access token.
func (s *AdminAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	access, claims, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Type != TokenAdmin {
		return "", utils.ErrInvalidToken
	}
	if _, ok := s.sessions.Get(claims.SessionID); !ok {
		return "", utils.ErrInvalidToken
	}
	return access, nil
}

// Logout ends admin session sid.
func (s *AdminAuthService) Logout(ctx context.Context, sid string) error {
	if sess, ok := s.sessions.Get(sid); ok {
		sess.Logout()
	}
	s.sessions.Close(sid)
	return s.tokens.Revoke(ctx, sid)
}

// SetPassword replaces the password of admin id.
func (s *AdminAuthService) SetPassword(id int, password string) error {
	return s.creds.set(credentialKey(id), password)
}

// RemoveCredential forgets the password of admin id.
func (s *AdminAuthService) RemoveCredential(id int) {
	s.creds.remove(credentialKey(id))
}

func credentialKey(id int) string {
	return strconv.Itoa(id)
}
