// Package checkout tracks in-flight checkouts and the voucher application
// state machine that belongs to each of them.
package checkout

import (
	"errors"
	"strings"
	"sync"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/pricing"
)

var (
	// ErrCheckInProgress is returned by BeginCheck while a check is running.
	ErrCheckInProgress = errors.New("voucher check in progress")
	// ErrStaleCheck is returned when a check result arrives after it was
	// superseded by a removal or a newer check.
	ErrStaleCheck = errors.New("voucher check superseded")
	// ErrEmptyCode is returned when no voucher code was entered.
	ErrEmptyCode = errors.New("voucher code is empty")
)

// VoucherState is the position of a checkout in the voucher state machine.
type VoucherState string

const (
	VoucherUnapplied VoucherState = "unapplied"
	VoucherChecking  VoucherState = "checking"
	VoucherApplied   VoucherState = "applied"
	VoucherRejected  VoucherState = "rejected"
)

// Ticket identifies one voucher check. Results carrying an old ticket are
// discarded.
type Ticket struct {
	Code       string
	generation uint64
}

// VoucherStatus is a snapshot of the voucher state machine.
type VoucherStatus struct {
	State    VoucherState      `json:"state"`
	Code     string            `json:"code,omitempty"`
	Discount int64             `json:"discount"`
	Reason   pricing.Rejection `json:"reason,omitempty"`
	Voucher  *models.Voucher   `json:"-"`
}

// VoucherMachine is the Unapplied -> Checking -> {Applied, Rejected} state
// machine. Applied returns to Unapplied on removal.
type VoucherMachine struct {
	mu         sync.Mutex
	state      VoucherState
	code       string
	discount   int64
	reason     pricing.Rejection
	voucher    *models.Voucher
	generation uint64
}

// NewVoucherMachine returns a machine in the Unapplied state.
func NewVoucherMachine() *VoucherMachine {
	return &VoucherMachine{state: VoucherUnapplied}
}

// BeginCheck moves to Checking for code. A previously applied discount is
// dropped until the new result arrives.
func (m *VoucherMachine) BeginCheck(code string) (Ticket, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Ticket{}, ErrEmptyCode
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == VoucherChecking {
		return Ticket{}, ErrCheckInProgress
	}
	m.generation++
	m.state = VoucherChecking
	m.code = code
	m.discount = 0
	m.reason = pricing.RejectNone
	m.voucher = nil
	return Ticket{Code: code, generation: m.generation}, nil
}

// CompleteCheck records the outcome of the check identified by t. A rejected
// code leaves no discount behind.
func (m *VoucherMachine) CompleteCheck(t Ticket, res pricing.Resolution) (VoucherStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.generation != m.generation || m.state != VoucherChecking {
		return m.statusLocked(), ErrStaleCheck
	}
	if res.Applied() {
		v := res.Voucher.Clone()
		m.state = VoucherApplied
		m.discount = res.Discount
		m.voucher = &v
		m.reason = pricing.RejectNone
	} else {
		m.state = VoucherRejected
		m.discount = 0
		m.voucher = nil
		m.reason = res.Reason
	}
	return m.statusLocked(), nil
}

// Abort abandons the check identified by t and returns to Unapplied.
func (m *VoucherMachine) Abort(t Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.generation != m.generation || m.state != VoucherChecking {
		return
	}
	m.generation++
	m.reset()
}

// Remove clears any voucher and invalidates a running check.
func (m *VoucherMachine) Remove() VoucherStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.reset()
	return m.statusLocked()
}

// Status returns the current snapshot.
func (m *VoucherMachine) Status() VoucherStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

func (m *VoucherMachine) reset() {
	m.state = VoucherUnapplied
	m.code = ""
	m.discount = 0
	m.reason = pricing.RejectNone
	m.voucher = nil
}

func (m *VoucherMachine) statusLocked() VoucherStatus {
	st := VoucherStatus{State: m.state, Code: m.code, Discount: m.discount, Reason: m.reason}
	if m.voucher != nil {
		v := m.voucher.Clone()
		st.Voucher = &v
	}
	return st
}
