package store

import (
	"sync"
	"time"

	"github.com/GTDGit/gtd_storefront/internal/models"
)

// Event topics published by the session containers.
const (
	TopicSession      = "session"
	TopicAdminSession = "admin_session"
)

// SessionState is a snapshot of a customer session.
type SessionState struct {
	User     *models.User `json:"user"`
	LoggedIn bool         `json:"isLoggedIn"`
}

// UserPatch carries the profile fields to merge; nil or empty means unchanged.
type UserPatch struct {
	Name     *string
	Phone    *string
	Password *string
}

// Session holds the signed-in customer. It never checks credentials.
type Session struct {
	mu       sync.RWMutex
	user     *models.User
	loggedIn bool
	subs     subscribers
}

// NewSession returns a logged-out session.
func NewSession() *Session {
	return &Session{}
}

// Login replaces the identity and marks the session logged in.
func (s *Session) Login(u models.User) {
	s.mu.Lock()
	s.user = &u
	s.loggedIn = true
	state := s.stateLocked()
	s.mu.Unlock()
	s.subs.publish(Event{Topic: TopicSession, Action: ActionCreated, Payload: state, At: time.Now()})
}

// Logout clears the identity.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.loggedIn = false
	s.mu.Unlock()
	s.subs.publish(Event{Topic: TopicSession, Action: ActionCleared, Payload: SessionState{}, At: time.Now()})
}

// Update merges the non-empty fields of p into the identity.
func (s *Session) Update(p UserPatch) (models.User, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return models.User{}, ErrNotLoggedIn
	}
	if p.Name != nil && *p.Name != "" {
		s.user.Name = *p.Name
	}
	if p.Phone != nil && *p.Phone != "" {
		s.user.Phone = *p.Phone
	}
	if p.Password != nil && *p.Password != "" {
		s.user.Password = *p.Password
	}
	out := *s.user
	state := s.stateLocked()
	s.mu.Unlock()
	s.subs.publish(Event{Topic: TopicSession, Action: ActionUpdated, Payload: state, At: time.Now()})
	return out, nil
}

// State returns a snapshot of the session.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Subscribe registers fn for session changes and returns its cancel func.
func (s *Session) Subscribe(fn Listener) func() {
	return s.subs.add(fn)
}

func (s *Session) stateLocked() SessionState {
	if s.user == nil {
		return SessionState{LoggedIn: s.loggedIn}
	}
	u := *s.user
	return SessionState{User: &u, LoggedIn: s.loggedIn}
}

// AdminSessionState is a snapshot of a back-office session.
type AdminSessionState struct {
	Admin    *models.AdminIdentity `json:"admin"`
	LoggedIn bool                  `json:"isLoggedIn"`
}

// AdminSession holds the signed-in back-office identity. The role is fixed
// for the life of the login.
type AdminSession struct {
	mu       sync.RWMutex
	admin    *models.AdminIdentity
	loggedIn bool
	subs     subscribers
}

// NewAdminSession returns a logged-out back-office session.
func NewAdminSession() *AdminSession {
	return &AdminSession{}
}

// Login replaces the identity and marks the session logged in.
func (s *AdminSession) Login(a models.AdminIdentity) {
	s.mu.Lock()
	s.admin = &a
	s.loggedIn = true
	state := s.stateLocked()
	s.mu.Unlock()
	s.subs.publish(Event{Topic: TopicAdminSession, Action: ActionCreated, Payload: state, At: time.Now()})
}

// Logout clears the identity.
func (s *AdminSession) Logout() {
	s.mu.Lock()
	s.admin = nil
	s.loggedIn = false
	s.mu.Unlock()
	s.subs.publish(Event{Topic: TopicAdminSession, Action: ActionCleared, Payload: AdminSessionState{}, At: time.Now()})
}

// State returns a snapshot of the session.
func (s *AdminSession) State() AdminSessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Subscribe registers fn for session changes and returns its cancel func.
func (s *AdminSession) Subscribe(fn Listener) func() {
	return s.subs.add(fn)
}

func (s *AdminSession) stateLocked() AdminSessionState {
	if s.admin == nil {
		return AdminSessionState{LoggedIn: s.loggedIn}
	}
	a := *s.admin
	return AdminSessionState{Admin: &a, LoggedIn: s.loggedIn}
}
