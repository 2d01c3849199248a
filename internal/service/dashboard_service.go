package service

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// DashboardService derives back-office analytics from the storefront ledger.
type DashboardService struct {
	catalog *store.CatalogStore
	admin   *store.AdminStore
}

func NewDashboardService(catalog *store.CatalogStore, admin *store.AdminStore) *DashboardService {
	return &DashboardService{catalog: catalog, admin: admin}
}

// Refresh recomputes the analytics snapshot from the live ledger.
func (s *DashboardService) Refresh() models.Analytics {
	return s.admin.LoadDashboardData(s.catalog.Transactions(""))
}

// Analytics returns the latest snapshot, computing one when none exists yet.
func (s *DashboardService) Analytics() models.Analytics {
	a := s.admin.Analytics()
	if a.GeneratedAt.IsZero() {
		return s.Refresh()
	}
	return a
}

// UpdateTransactionStatus moves ledger entry id to status and refreshes the
// dashboard snapshot.
func (s *DashboardService) UpdateTransactionStatus(id string, status models.TransactionStatus) (models.Transaction, error) {
	tx, err := s.catalog.UpdateTransactionStatus(id, status)
	if errors.Is(err, store.ErrNotFound) {
		return models.Transaction{}, utils.ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}
	log.Info().Str("transaction_id", id).Str("status", string(status)).Msg("Transaction status updated")
	s.Refresh()
	return tx, nil
}

// TransactionFilter narrows the back-office ledger listing.
type TransactionFilter struct {
	Status models.TransactionStatus
	Search string
	Page   int
	Limit  int
}

// TransactionPage is one page of the filtered ledger.
type TransactionPage struct {
	Transactions []models.Transaction
	Page         int
	Limit        int
	TotalItems   int
}

// Transactions returns the filtered ledger, most recent first. Search
// matches the id, product name, game account or WhatsApp number.
func (s *DashboardService) Transactions(f TransactionFilter) TransactionPage {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 50
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))

	var matched []models.Transaction
	for _, tx := range s.catalog.Transactions("") {
		if f.Status != "" && tx.Status != f.Status {
			continue
		}
		if term != "" && !matchesTransaction(tx, term) {
			continue
		}
		matched = append(matched, tx)
	}

	page := TransactionPage{Page: f.Page, Limit: f.Limit, TotalItems: len(matched), Transactions: []models.Transaction{}}
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return page
	}
	end := min(start+f.Limit, len(matched))
	page.Transactions = matched[start:end]
	return page
}

func matchesTransaction(tx models.Transaction, term string) bool {
	for _, v := range []string{tx.ID, tx.ProductName, tx.GameAccount, tx.WhatsApp} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}
