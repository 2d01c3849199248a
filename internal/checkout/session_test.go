package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/models"
)

func TestSession_QuoteFollowsPaymentAndVoucher(t *testing.T) {
	m := NewManager(time.Minute, nil)
	s := m.Open(1, "08123456789")

	assert.Equal(t, int64(20000), s.Quote(20000).Total)

	s.SelectPaymentMethod(models.PaymentMethod{ID: "bca", Fee: 2500})
	assert.Equal(t, int64(22500), s.Quote(20000).Total)

	tk, err := s.Voucher.BeginCheck("SAVE5K")
	require.NoError(t, err)
	_, err = s.Voucher.CompleteCheck(tk, applied(5000))
	require.NoError(t, err)
	assert.Equal(t, int64(17500), s.Quote(20000).Total)

	s.Voucher.Remove()
	assert.Equal(t, int64(22500), s.Quote(20000).Total)
}

func TestSession_MarkSubmittedOnce(t *testing.T) {
	s := NewManager(time.Minute, nil).Open(1, "")
	assert.True(t, s.MarkSubmitted())
	assert.False(t, s.MarkSubmitted())
	s.Unsubmit()
	assert.True(t, s.MarkSubmitted())
	assert.True(t, s.View().Submitted)
}

func TestManager_ExpiresIdleSessions(t *testing.T) {
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := NewManager(10*time.Minute, clock)

	s := m.Open(1, "")
	_, ok := m.Get(s.ID)
	require.True(t, ok)

	now = now.Add(9 * time.Minute)
	_, ok = m.Get(s.ID)
	require.True(t, ok, "get extends the lifetime")

	now = now.Add(9 * time.Minute)
	_, ok = m.Get(s.ID)
	require.True(t, ok)

	now = now.Add(11 * time.Minute)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
	assert.Zero(t, m.Len())
}

func TestManager_OpenSweepsExpired(t *testing.T) {
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(time.Minute, func() time.Time { return now })
	m.Open(1, "")
	m.Open(2, "")
	now = now.Add(2 * time.Minute)
	m.Open(3, "")
	assert.Equal(t, 1, m.Len())

	s := m.Open(4, "")
	m.Close(s.ID)
	_, ok := m.Get(s.ID)
	assert.False(t, ok)
}

func TestManager_Sweep(t *testing.T) {
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(time.Minute, func() time.Time { return now })
	m.Open(1, "")
	m.Open(2, "")
	assert.Zero(t, m.Sweep())

	now = now.Add(time.Minute)
	assert.Equal(t, 2, m.Sweep())
	assert.Zero(t, m.Len())
}
