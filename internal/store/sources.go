package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/GTDGit/gtd_storefront/internal/models"
)

// ProductSource pages additional products into the catalog. A cursor of 0
// requests the first page; the returned cursor is passed to the next call.
type ProductSource interface {
	FetchNextPage(ctx context.Context, cursor int) ([]models.Product, int, error)
}

// TransactionSource pages older transactions into an owner's history.
type TransactionSource interface {
	FetchNextPage(ctx context.Context, owner string, cursor int) ([]models.Transaction, int, error)
}

var stockImages = []string{
	"https://images.unsplash.com/photo-1511512578047-dfb367046420?w=150&h=100&fit=crop&crop=center",
	"https://images.unsplash.com/photo-1493711662062-fa541adb3fc8?w=150&h=100&fit=crop&crop=center",
	"https://images.unsplash.com/photo-1552820728-8b83bb6b773f?w=150&h=100&fit=crop&crop=center",
	"https://images.unsplash.com/photo-1509198397868-475647b2a1e5?w=150&h=100&fit=crop&crop=center",
}

// SyntheticProductSource fabricates one "Diamond Pack" per page for a
// random seeded game.
type SyntheticProductSource struct {
	mu         sync.Mutex
	rng        *rand.Rand
	categories []models.Category
}

// NewSyntheticProductSource builds a source over categories. A nil rng is
// replaced by a time-seeded one.
func NewSyntheticProductSource(categories []models.Category, rng *rand.Rand) *SyntheticProductSource {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &SyntheticProductSource{rng: rng, categories: categories}
}

// FetchNextPage returns a single random product. IDs are assigned by the
// catalog on append.
func (s *SyntheticProductSource) FetchNextPage(ctx context.Context, cursor int) ([]models.Product, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, cursor, err
	}
	if len(s.categories) == 0 {
		return nil, cursor, nil
	}
	s.mu.Lock()
	cat := s.categories[s.rng.IntN(len(s.categories))]
	image := stockImages[s.rng.IntN(len(stockImages))]
	price := (s.rng.IntN(50) + 10) * 1000
	s.mu.Unlock()

	p := models.Product{
		Name:        cat.Name + " Diamond Pack",
		Description: "Diamond premium untuk " + cat.Name,
		Price:       fmt.Sprintf("%d", price),
		Image:       image,
		Category:    cat.Name,
		CategoryID:  cat.ID,
		Status:      models.StatusActive,
		FormConfig:  FormConfigFor(cat.Name),
	}
	return []models.Product{p}, cursor + 1, nil
}

// SyntheticTransactionSource fabricates one settled Mobile Legends purchase
// per page.
type SyntheticTransactionSource struct {
	ids   *TransactionIDs
	clock Clock
}

// NewSyntheticTransactionSource builds a source that draws ids from ids.
func NewSyntheticTransactionSource(ids *TransactionIDs, clock Clock) *SyntheticTransactionSource {
	if clock == nil {
		clock = time.Now
	}
	return &SyntheticTransactionSource{ids: ids, clock: clock}
}

// FetchNextPage returns a single success transaction for owner.
func (s *SyntheticTransactionSource) FetchNextPage(ctx context.Context, owner string, cursor int) ([]models.Transaction, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, cursor, err
	}
	tx := models.Transaction{
		ID:                s.ids.Next(),
		Owner:             owner,
		Game:              "Mobile Legends",
		ProductName:       "Mobile Legends Diamond Pack",
		Amount:            35000,
		OriginalAmount:    35000,
		Status:            models.TrxSuccess,
		Date:              s.clock().Format(time.RFC3339),
		PaymentMethod:     "gopay",
		PaymentMethodName: "GoPay",
	}
	return []models.Transaction{tx}, cursor + 1, nil
}

// TransactionIDs issues strictly increasing TRX<unix-millis> identifiers.
type TransactionIDs struct {
	mu    sync.Mutex
	last  int64
	clock Clock
}

// NewTransactionIDs creates a generator reading time from clock.
func NewTransactionIDs(clock Clock) *TransactionIDs {
	if clock == nil {
		clock = time.Now
	}
	return &TransactionIDs{clock: clock}
}

// Next returns a fresh id. Two calls in the same millisecond still differ.
func (g *TransactionIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.clock().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("TRX%d", ms)
}
