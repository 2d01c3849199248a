package checkout

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/pricing"
)

// Session is one customer's checkout of a single product.
type Session struct {
	ID        string
	ProductID int
	Owner     string
	Voucher   *VoucherMachine

	mu            sync.Mutex
	paymentMethod *models.PaymentMethod
	submitted     bool
	expiresAt     time.Time
}

// View is the serialisable state of a checkout.
type View struct {
	ID            string                `json:"id"`
	ProductID     int                   `json:"productId"`
	PaymentMethod *models.PaymentMethod `json:"paymentMethod,omitempty"`
	Voucher       VoucherStatus         `json:"voucher"`
	Submitted     bool                  `json:"submitted"`
	ExpiresAt     time.Time             `json:"expiresAt"`
}

// SelectPaymentMethod sets the payment channel used for the fee.
func (s *Session) SelectPaymentMethod(pm models.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentMethod = &pm
}

// PaymentMethod returns the selected channel.
func (s *Session) PaymentMethod() (models.PaymentMethod, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paymentMethod == nil {
		return models.PaymentMethod{}, false
	}
	return *s.paymentMethod, true
}

// Fee returns the fee of the selected channel, or 0 when none is selected.
func (s *Session) Fee() int64 {
	pm, ok := s.PaymentMethod()
	if !ok {
		return 0
	}
	return pm.Fee
}

// Quote prices the checkout for a product price.
func (s *Session) Quote(price int64) pricing.Quote {
	return pricing.Compute(price, s.Fee(), s.Voucher.Status().Discount)
}

// MarkSubmitted flags the session as committed. It reports false if it was
// already submitted.
func (s *Session) MarkSubmitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return false
	}
	s.submitted = true
	return true
}

// Unsubmit reverts MarkSubmitted after a failed commit.
func (s *Session) Unsubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = false
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	v := View{
		ID:        s.ID,
		ProductID: s.ProductID,
		Submitted: s.submitted,
		ExpiresAt: s.expiresAt,
	}
	if s.paymentMethod != nil {
		pm := *s.paymentMethod
		v.PaymentMethod = &pm
	}
	s.mu.Unlock()
	v.Voucher = s.Voucher.Status()
	return v
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !now.Before(s.expiresAt)
}

func (s *Session) touch(until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = until
}

// Manager keeps open checkout sessions and expires idle ones lazily.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	clock    func() time.Time
}

// NewManager creates a Manager whose sessions live for ttl after last use.
func NewManager(ttl time.Duration, clock func() time.Time) *Manager {
	if clock == nil {
		clock = time.Now
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		clock:    clock,
	}
}

// Open starts a checkout of productID for owner.
func (m *Manager) Open(productID int, owner string) *Session {
	now := m.clock()
	s := &Session{
		ID:        uuid.NewString(),
		ProductID: productID,
		Owner:     owner,
		Voucher:   NewVoucherMachine(),
		expiresAt: now.Add(m.ttl),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked(now)
	m.sessions[s.ID] = s
	return s
}

// Get returns a live session and extends its lifetime.
func (m *Manager) Get(id string) (*Session, bool) {
	now := m.clock()
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(now) {
		delete(m.sessions, id)
		return nil, false
	}
	s.touch(now.Add(m.ttl))
	return s, true
}

// Close discards session id.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of tracked sessions, expired ones included.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops every expired session and returns how many were removed.
func (m *Manager) Sweep() int {
	now := m.clock()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(now)
}

func (m *Manager) sweepLocked(now time.Time) int {
	n := 0
	for id, s := range m.sessions {
		if s.expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
