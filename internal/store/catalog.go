package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GTDGit/gtd_storefront/internal/models"
)

// Event topics published by CatalogStore.
const (
	TopicProducts     = "products"
	TopicGameAccounts = "game_accounts"
	TopicTransactions = "transactions"
)

// CatalogOptions configures a CatalogStore. Nil sources fall back to the
// synthetic ones.
type CatalogOptions struct {
	Products          []models.Product
	Categories        []models.Category
	Transactions      []models.Transaction
	ProductSource     ProductSource
	TransactionSource TransactionSource
	IDs               *TransactionIDs
	Clock             Clock
}

// SeedCatalogOptions returns options preloaded with the storefront fixtures.
func SeedCatalogOptions() CatalogOptions {
	return CatalogOptions{
		Products:     SeedStorefrontProducts(),
		Categories:   SeedCategories(),
		Transactions: SeedTransactions(),
	}
}

// GameAccountPatch carries game account fields to merge; nil means unchanged.
type GameAccountPatch struct {
	Game   *string
	GameID *string
	Server *string
}

// CatalogStore is the storefront's product catalog, per-session game
// accounts, and the transaction ledger.
type CatalogStore struct {
	mu         sync.RWMutex
	products   []models.Product
	categories []models.Category
	accounts   map[string][]models.GameAccount
	ledger     []models.Transaction
	productIDs idCounter

	pageMu        sync.Mutex
	productCursor int
	txCursors     map[string]int

	productSource ProductSource
	txSource      TransactionSource
	ids           *TransactionIDs
	clock         Clock
	subs          subscribers
}

// NewCatalogStore builds a CatalogStore from opts. Input slices are copied.
func NewCatalogStore(opts CatalogOptions) *CatalogStore {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	ids := opts.IDs
	if ids == nil {
		ids = NewTransactionIDs(clock)
	}
	s := &CatalogStore{
		categories: append([]models.Category(nil), opts.Categories...),
		accounts:   make(map[string][]models.GameAccount),
		txCursors:  make(map[string]int),
		ids:        ids,
		clock:      clock,
	}
	for _, p := range opts.Products {
		s.products = append(s.products, p.Clone())
		s.productIDs.seedPast(p.ID)
	}
	for _, tx := range opts.Transactions {
		s.ledger = append(s.ledger, tx.Clone())
	}
	s.productSource = opts.ProductSource
	if s.productSource == nil {
		s.productSource = NewSyntheticProductSource(s.categories, nil)
	}
	s.txSource = opts.TransactionSource
	if s.txSource == nil {
		s.txSource = NewSyntheticTransactionSource(ids, clock)
	}
	return s
}

// Subscribe registers fn for catalog changes and returns its cancel func.
func (s *CatalogStore) Subscribe(fn Listener) func() {
	return s.subs.add(fn)
}

// NextTransactionID issues a fresh ledger id.
func (s *CatalogStore) NextTransactionID() string {
	return s.ids.Next()
}

// ListProducts returns every product in insertion order.
func (s *CatalogStore) ListProducts() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// Search filters the catalog by a case-insensitive substring of name or
// category. An empty term yields the full set. The catalog itself is never
// narrowed.
func (s *CatalogStore) Search(term string) []models.Product {
	needle := strings.ToLower(strings.TrimSpace(term))
	s.mu.RLock()
	defer s.mu.RUnlock()
	if needle == "" {
		return cloneProducts(s.products)
	}
	out := make([]models.Product, 0)
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// GetProduct returns the product with id.
func (s *CatalogStore) GetProduct(id int) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return models.Product{}, false
}

// Categories returns the storefront game list.
func (s *CatalogStore) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category(nil), s.categories...)
}

// LoadMore appends the next page from the product source and returns the
// appended products.
func (s *CatalogStore) LoadMore(ctx context.Context) ([]models.Product, error) {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	page, next, err := s.productSource.FetchNextPage(ctx, s.productCursor)
	if err != nil {
		return nil, fmt.Errorf("fetch product page %d: %w", s.productCursor, err)
	}
	s.productCursor = next

	today := s.clock().Format(models.DateLayout)
	s.mu.Lock()
	added := make([]models.Product, 0, len(page))
	for _, p := range page {
		p = p.Clone()
		p.ID = s.productIDs.take()
		if p.CreatedAt == "" {
			p.CreatedAt = today
		}
		s.products = append(s.products, p)
		added = append(added, p.Clone())
	}
	s.mu.Unlock()

	s.subs.publish(Event{Topic: TopicProducts, Action: ActionLoaded, Payload: added, At: s.clock()})
	return added, nil
}

// GameAccounts returns owner's saved accounts.
func (s *CatalogStore) GameAccounts(owner string) []models.GameAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.GameAccount{}, s.accounts[owner]...)
}

// AddGameAccount stores acc for owner under a fresh id.
func (s *CatalogStore) AddGameAccount(owner string, acc models.GameAccount) models.GameAccount {
	acc.ID = uuid.NewString()
	s.mu.Lock()
	s.accounts[owner] = append(s.accounts[owner], acc)
	s.mu.Unlock()
	s.subs.publish(Event{Topic: TopicGameAccounts, Action: ActionCreated, ID: acc.ID, Payload: acc, At: s.clock()})
	return acc
}

// UpdateGameAccount merges p into owner's account id.
func (s *CatalogStore) UpdateGameAccount(owner, id string, p GameAccountPatch) (models.GameAccount, error) {
	s.mu.Lock()
	accs := s.accounts[owner]
	idx := -1
	for i := range accs {
		if accs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return models.GameAccount{}, ErrNotFound
	}
	acc := &accs[idx]
	if p.Game != nil {
		acc.Game = *p.Game
	}
	if p.GameID != nil {
		acc.GameID = *p.GameID
	}
	if p.Server != nil {
		acc.Server = *p.Server
	}
	out := *acc
	s.mu.Unlock()
	s.subs.publish(Event{Topic: TopicGameAccounts, Action: ActionUpdated, ID: id, Payload: out, At: s.clock()})
	return out, nil
}

// DeleteGameAccount removes owner's account id.
func (s *CatalogStore) DeleteGameAccount(owner, id string) error {
	s.mu.Lock()
	accs := s.accounts[owner]
	for i := range accs {
		if accs[i].ID == id {
			s.accounts[owner] = append(accs[:i:i], accs[i+1:]...)
			s.mu.Unlock()
			s.subs.publish(Event{Topic: TopicGameAccounts, Action: ActionDeleted, ID: id, At: s.clock()})
			return nil
		}
	}
	s.mu.Unlock()
	return ErrNotFound
}

// ClearGameAccounts drops every account saved by owner.
func (s *CatalogStore) ClearGameAccounts(owner string) {
	s.mu.Lock()
	_, had := s.accounts[owner]
	delete(s.accounts, owner)
	s.mu.Unlock()
	if had {
		s.subs.publish(Event{Topic: TopicGameAccounts, Action: ActionCleared, ID: owner, At: s.clock()})
	}
}

// AddTransaction prepends tx to the ledger.
func (s *CatalogStore) AddTransaction(tx models.Transaction) {
	tx = tx.Clone()
	s.mu.Lock()
	s.ledger = append([]models.Transaction{tx}, s.ledger...)
	s.mu.Unlock()
	s.subs.publish(Event{Topic: TopicTransactions, Action: ActionCreated, ID: tx.ID, Payload: tx.Clone(), At: s.clock()})
}

// UpdateTransactionStatus sets the status of ledger entry id.
func (s *CatalogStore) UpdateTransactionStatus(id string, status models.TransactionStatus) (models.Transaction, error) {
	s.mu.Lock()
	for i := range s.ledger {
		if s.ledger[i].ID == id {
			s.ledger[i].Status = status
			out := s.ledger[i].Clone()
			s.mu.Unlock()
			s.subs.publish(Event{Topic: TopicTransactions, Action: ActionUpdated, ID: id, Payload: out.Clone(), At: s.clock()})
			return out, nil
		}
	}
	s.mu.Unlock()
	return models.Transaction{}, ErrNotFound
}

// ReassignTransactions moves every ledger entry owned by from to to, along
// with from's history paging cursor, and returns how many entries moved.
func (s *CatalogStore) ReassignTransactions(from, to string) int {
	if from == "" || from == to {
		return 0
	}
	s.pageMu.Lock()
	if cursor, ok := s.txCursors[from]; ok {
		s.txCursors[to] = cursor
		delete(s.txCursors, from)
	}
	s.pageMu.Unlock()

	s.mu.Lock()
	n := 0
	for i := range s.ledger {
		if s.ledger[i].Owner == from {
			s.ledger[i].Owner = to
			n++
		}
	}
	s.mu.Unlock()
	if n > 0 {
		s.subs.publish(Event{Topic: TopicTransactions, Action: ActionUpdated, ID: to, At: s.clock()})
	}
	return n
}

// RemoveTransaction deletes ledger entry id.
func (s *CatalogStore) RemoveTransaction(id string) error {
	s.mu.Lock()
	for i := range s.ledger {
		if s.ledger[i].ID == id {
			s.ledger = append(s.ledger[:i:i], s.ledger[i+1:]...)
			s.mu.Unlock()
			s.subs.publish(Event{Topic: TopicTransactions, Action: ActionDeleted, ID: id, At: s.clock()})
			return nil
		}
	}
	s.mu.Unlock()
	return ErrNotFound
}

// GetTransaction returns ledger entry id.
func (s *CatalogStore) GetTransaction(id string) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.ledger {
		if tx.ID == id {
			return tx.Clone(), true
		}
	}
	return models.Transaction{}, false
}

// Transactions returns owner's entries most recent first. An empty owner
// returns the whole ledger.
func (s *CatalogStore) Transactions(owner string) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Transaction, 0, len(s.ledger))
	for _, tx := range s.ledger {
		if owner == "" || tx.Owner == owner {
			out = append(out, tx.Clone())
		}
	}
	return out
}

// LoadMoreTransactions appends the next page of owner's older history.
func (s *CatalogStore) LoadMoreTransactions(ctx context.Context, owner string) ([]models.Transaction, error) {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	cursor := s.txCursors[owner]
	page, next, err := s.txSource.FetchNextPage(ctx, owner, cursor)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction page %d: %w", cursor, err)
	}
	s.txCursors[owner] = next

	s.mu.Lock()
	added := make([]models.Transaction, 0, len(page))
	for _, tx := range page {
		tx = tx.Clone()
		if tx.Owner == "" {
			tx.Owner = owner
		}
		s.ledger = append(s.ledger, tx)
		added = append(added, tx.Clone())
	}
	s.mu.Unlock()

	s.subs.publish(Event{Topic: TopicTransactions, Action: ActionLoaded, ID: owner, Payload: added, At: s.clock()})
	return added, nil
}

func cloneProducts(in []models.Product) []models.Product {
	out := make([]models.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
