package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// CustomerAccount is a storefront login known to the AuthService.
type CustomerAccount struct {
	Name     string
	Phone    string
	Password string
}

// DemoCustomers returns the demo storefront account.
func DemoCustomers() []CustomerAccount {
	return []CustomerAccount{
		{Name: "Demo User", Phone: store.DemoCustomerPhone, Password: "password"},
	}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Tokens *TokenPair  `json:"tokens"`
	User   models.User `json:"user"`
}

// ProfileInput carries a profile update. Empty password means unchanged.
type ProfileInput struct {
	Name     string
	Phone    string
	Password string
}

// AuthService checks storefront credentials and manages customer sessions.
type AuthService struct {
	sessions *store.SessionRegistry
	catalog  *store.CatalogStore
	tokens   *TokenService
	creds    *credentialBook

	mu    sync.RWMutex
	names map[string]string
}

// NewAuthService hashes the given accounts and returns an AuthService.
func NewAuthService(sessions *store.SessionRegistry, catalog *store.CatalogStore, tokens *TokenService, accounts []CustomerAccount) (*AuthService, error) {
	s := &AuthService{
		sessions: sessions,
		catalog:  catalog,
		tokens:   tokens,
		creds:    newCredentialBook(0),
		names:    make(map[string]string),
	}
	for _, a := range accounts {
		phone := utils.NormalizePhone(a.Phone)
		if err := s.creds.set(phone, a.Password); err != nil {
			return nil, err
		}
		s.names[phone] = a.Name
	}
	return s, nil
}

// Login verifies phone and password and opens a new session.
func (s *AuthService) Login(ctx context.Context, phone, password string) (*LoginResult, error) {
	phone = utils.NormalizePhone(phone)
	if phone == "" || password == "" {
		ve := utils.NewValidationError()
		if phone == "" {
			ve.Add("phone", "phone is required")
		}
		if password == "" {
			ve.Add("password", "password is required")
		}
		return nil, ve
	}

	if !s.creds.verify(phone, password) {
		log.Warn().Str("phone", phone).Msg("Customer login failed")
		return nil, utils.ErrInvalidCredentials
	}

	s.mu.RLock()
	name := s.names[phone]
	s.mu.RUnlock()

	sid := uuid.NewString()
	user := models.User{Name: name, Phone: phone}
	tokens, err := s.tokens.Issue(ctx, TokenUser, sid, phone, "")
	if err != nil {
		return nil, err
	}
	s.sessions.Open(sid).Login(user)

	log.Info().Str("phone", phone).Str("session_id", sid).Msg("Customer logged in")
	return &LoginResult{Tokens: tokens, User: user}, nil
}

// Authenticate validates a customer access token and returns its live session.
func (s *AuthService) Authenticate(token string) (*Claims, *store.Session, error) {
	claims, err := s.tokens.Validate(token, TokenUser)
	if err != nil {
		return nil, nil, err
	}
	sess, ok := s.sessions.Get(claims.SessionID)
	if !ok || !sess.State().LoggedIn {
		return nil, nil, utils.ErrInvalidToken
	}
	return claims, sess, nil
}

// Refresh exchanges a customer refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	access, claims, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Type != TokenUser {
		return "", utils.ErrInvalidToken
	}
	if _, ok := s.sessions.Get(claims.SessionID); !ok {
		return "", utils.ErrInvalidToken
	}
	return access, nil
}

// Logout ends session sid and drops its game accounts.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if sess, ok := s.sessions.Get(sid); ok {
		sess.Logout()
	}
	s.sessions.Close(sid)
	s.catalog.ClearGameAccounts(sid)
	if err := s.tokens.Revoke(ctx, sid); err != nil {
		log.Error().Err(err).Str("session_id", sid).Msg("Failed to revoke refresh token")
		return err
	}
	return nil
}

// Profile returns the state of session sid.
func (s *AuthService) Profile(sid string) (store.SessionState, error) {
	sess, ok := s.sessions.Get(sid)
	if !ok {
		return store.SessionState{}, utils.ErrSessionNotFound
	}
	return sess.State(), nil
}

// UpdateProfile validates in and merges it into session sid. A new phone
// becomes the login for the account and takes over its transaction history
// and its other open sessions. A phone registered to another account is
// rejected with ErrDuplicatePhone.
func (s *AuthService) UpdateProfile(sid string, in ProfileInput) (models.User, error) {
	sess, ok := s.sessions.Get(sid)
	if !ok {
		return models.User{}, utils.ErrSessionNotFound
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Phone = utils.NormalizePhone(in.Phone)
	ve := utils.NewValidationError()
	if in.Name == "" {
		ve.Add("name", "name is required")
	}
	if !utils.IsPhone(in.Phone) {
		ve.Add("phone", "phone must be 10-12 digits")
	}
	if in.Password != "" && len(in.Password) < 6 {
		ve.Add("password", "password must be at least 6 characters")
	}
	if err := ve.OrNil(); err != nil {
		return models.User{}, err
	}

	before := sess.State()
	if before.User == nil {
		return models.User{}, utils.ErrLoginRequired
	}
	oldPhone := before.User.Phone

	if !s.creds.rename(oldPhone, in.Phone) {
		return models.User{}, utils.ErrDuplicatePhone
	}
	updated, err := sess.Update(store.UserPatch{Name: &in.Name, Phone: &in.Phone})
	if err != nil {
		s.creds.rename(in.Phone, oldPhone)
		return models.User{}, utils.ErrLoginRequired
	}

	s.mu.Lock()
	delete(s.names, oldPhone)
	s.names[updated.Phone] = updated.Name
	s.mu.Unlock()
	if oldPhone != updated.Phone {
		s.sessions.Range(func(id string, other *store.Session) bool {
			if u := other.State().User; id != sid && u != nil && u.Phone == oldPhone {
				_, _ = other.Update(store.UserPatch{Name: &updated.Name, Phone: &updated.Phone})
			}
			return true
		})
		n := s.catalog.ReassignTransactions(oldPhone, updated.Phone)
		log.Debug().Str("from", oldPhone).Str("to", updated.Phone).Int("transactions", n).Msg("Transactions moved to new phone")
	}
	if in.Password != "" {
		if err := s.creds.set(updated.Phone, in.Password); err != nil {
			return models.User{}, err
		}
	}

	log.Info().Str("session_id", sid).Str("phone", updated.Phone).Msg("Profile updated")
	return updated, nil
}
