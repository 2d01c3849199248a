package models

import "time"

// DailySales is one point of the dashboard sales series.
type DailySales struct {
	Date  string `json:"date"`
	Sales int64  `json:"sales"`
}

// TopProduct ranks a product by revenue.
type TopProduct struct {
	Name    string `json:"name"`
	Sales   int    `json:"sales"`
	Revenue int64  `json:"revenue"`
}

// RecentTransaction is the condensed ledger row shown on the dashboard.
type RecentTransaction struct {
	ID      string            `json:"id"`
	User    string            `json:"user"`
	Product string            `json:"product"`
	Amount  int64             `json:"amount"`
	Status  TransactionStatus `json:"status"`
}

// Analytics is the back-office dashboard snapshot.
type Analytics struct {
	TotalSales         int64               `json:"totalSales"`
	TotalTransactions  int                 `json:"totalTransactions"`
	TotalUsers         int                 `json:"totalUsers"`
	TotalProducts      int                 `json:"totalProducts"`
	DailySales         []DailySales        `json:"dailySales"`
	TopProducts        []TopProduct        `json:"topProducts"`
	RecentTransactions []RecentTransaction `json:"recentTransactions"`
	GeneratedAt        time.Time           `json:"generatedAt"`
}
