package store

import (
	"sort"
	"time"

	"github.com/GTDGit/gtd_storefront/internal/models"
)

const (
	dashboardDays   = 7
	dashboardTopN   = 5
	dashboardRecent = 5
)

// LoadDashboardData recomputes the dashboard from the back-office
// collections and ledger (most recent first) and stores the result.
func (s *AdminStore) LoadDashboardData(ledger []models.Transaction) models.Analytics {
	now := s.clock()

	s.mu.RLock()
	productCount := len(s.products)
	s.mu.RUnlock()

	a := computeAnalytics(ledger, productCount, now)

	s.mu.Lock()
	s.analytics = a
	s.mu.Unlock()
	s.subs.publish(Event{Topic: TopicAnalytics, Action: ActionLoaded, Payload: a, At: now})
	return a
}

// Analytics returns the last computed dashboard snapshot.
func (s *AdminStore) Analytics() models.Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analytics
}

func computeAnalytics(ledger []models.Transaction, productCount int, now time.Time) models.Analytics {
	a := models.Analytics{
		TotalTransactions: len(ledger),
		TotalProducts:     productCount,
		GeneratedAt:       now,
	}

	days := make([]models.DailySales, dashboardDays)
	dayIndex := make(map[string]int, dashboardDays)
	for i := 0; i < dashboardDays; i++ {
		d := now.AddDate(0, 0, i-(dashboardDays-1)).Format(models.DateLayout)
		days[i] = models.DailySales{Date: d}
		dayIndex[d] = i
	}

	owners := make(map[string]struct{})
	byProduct := make(map[string]*models.TopProduct)
	for _, tx := range ledger {
		if tx.Owner != "" {
			owners[tx.Owner] = struct{}{}
		}
		if tx.Status != models.TrxSuccess {
			continue
		}
		a.TotalSales += tx.Amount
		if i, ok := dayIndex[transactionDay(tx.Date, now.Location())]; ok {
			days[i].Sales += tx.Amount
		}
		tp, ok := byProduct[tx.ProductName]
		if !ok {
			tp = &models.TopProduct{Name: tx.ProductName}
			byProduct[tx.ProductName] = tp
		}
		tp.Sales++
		tp.Revenue += tx.Amount
	}
	a.TotalUsers = len(owners)
	a.DailySales = days

	top := make([]models.TopProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		top = append(top, *tp)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Revenue != top[j].Revenue {
			return top[i].Revenue > top[j].Revenue
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > dashboardTopN {
		top = top[:dashboardTopN]
	}
	a.TopProducts = top

	recent := make([]models.RecentTransaction, 0, dashboardRecent)
	for _, tx := range ledger {
		if len(recent) == dashboardRecent {
			break
		}
		recent = append(recent, models.RecentTransaction{
			ID:      tx.ID,
			User:    tx.Owner,
			Product: tx.ProductName,
			Amount:  tx.Amount,
			Status:  tx.Status,
		})
	}
	a.RecentTransactions = recent
	return a
}

// transactionDay maps an RFC3339 or plain-date stamp to a calendar day in loc.
func transactionDay(stamp string, loc *time.Location) string {
	if t, err := time.Parse(time.RFC3339, stamp); err == nil {
		return t.In(loc).Format(models.DateLayout)
	}
	if len(stamp) >= len(models.DateLayout) {
		return stamp[:len(models.DateLayout)]
	}
	return stamp
}
