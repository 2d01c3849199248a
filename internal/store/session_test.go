package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/models"
)

func strPtr(s string) *string { return &s }

func TestSession_LoginUpdateLogout(t *testing.T) {
	s := NewSession()
	assert.False(t, s.State().LoggedIn)

	_, err := s.Update(UserPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	s.Login(models.User{Name: "Demo", Phone: "08123456789", Password: "password"})
	st := s.State()
	require.True(t, st.LoggedIn)
	assert.Equal(t, "Demo", st.User.Name)

	u, err := s.Update(UserPatch{Name: strPtr("Renamed"), Phone: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)
	assert.Equal(t, "08123456789", u.Phone)

	s.Logout()
	st = s.State()
	assert.False(t, st.LoggedIn)
	assert.Nil(t, st.User)
}

func TestSession_StateIsCopy(t *testing.T) {
	s := NewSession()
	s.Login(models.User{Name: "Demo"})
	st := s.State()
	st.User.Name = "Mutated"
	assert.Equal(t, "Demo", s.State().User.Name)
}

func TestSession_SubscribeAndCancel(t *testing.T) {
	s := NewSession()
	var got []Action
	cancel := s.Subscribe(func(e Event) { got = append(got, e.Action) })

	s.Login(models.User{Name: "A"})
	s.Logout()
	cancel()
	cancel()
	s.Login(models.User{Name: "B"})

	assert.Equal(t, []Action{ActionCreated, ActionCleared}, got)
}

func TestAdminSession_LoginLogout(t *testing.T) {
	s := NewAdminSession()
	s.Login(models.AdminIdentity{ID: 2, Username: "operator", Name: "Operator 1", Role: models.RoleOperator})
	st := s.State()
	require.True(t, st.LoggedIn)
	assert.Equal(t, models.RoleOperator, st.Admin.Role)

	s.Logout()
	assert.False(t, s.State().LoggedIn)
	assert.Nil(t, s.State().Admin)
}

func TestRegistry_OpenGetClose(t *testing.T) {
	r := NewSessionRegistry()
	a := r.Open("sid-1")
	assert.Same(t, a, r.Open("sid-1"))
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get("sid-1")
	require.True(t, ok)
	assert.Same(t, a, got)

	r.Close("sid-1")
	_, ok = r.Get("sid-1")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentOpen(t *testing.T) {
	r := NewAdminSessionRegistry()
	var wg sync.WaitGroup
	results := make([]*AdminSession, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Open("same")
		}(i)
	}
	wg.Wait()
	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}
