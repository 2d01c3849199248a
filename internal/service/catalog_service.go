package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// GameAccountInput carries a saved game account.
type GameAccountInput struct {
	Game   string
	GameID string
	Server string
}

// CatalogService serves the storefront catalog, saved game accounts and the
// customer's transaction history.
type CatalogService struct {
	catalog *store.CatalogStore
}

// NewCatalogService creates a CatalogService over catalog.
func NewCatalogService(catalog *store.CatalogStore) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// Products returns the products matching term, or all of them when term is
// empty.
func (s *CatalogService) Products(term string) []models.Product {
	return s.catalog.Search(term)
}

// Product returns product id.
func (s *CatalogService) Product(id int) (models.Product, error) {
	p, ok := s.catalog.GetProduct(id)
	if !ok {
		return models.Product{}, utils.ErrProductNotFound
	}
	return p, nil
}

// Categories returns the storefront categories.
func (s *CatalogService) Categories() []models.Category {
	return s.catalog.Categories()
}

// LoadMore appends the next page of products and returns it.
func (s *CatalogService) LoadMore(ctx context.Context) ([]models.Product, error) {
	page, err := s.catalog.LoadMore(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load more products")
		return nil, err
	}
	return page, nil
}

// GameAccounts lists the game accounts saved in session sid.
func (s *CatalogService) GameAccounts(sid string) []models.GameAccount {
	return s.catalog.GameAccounts(sid)
}

// AddGameAccount saves a game account in session sid.
func (s *CatalogService) AddGameAccount(sid string, in GameAccountInput) (models.GameAccount, error) {
	in.Game = strings.TrimSpace(in.Game)
	in.GameID = strings.TrimSpace(in.GameID)
	in.Server = strings.TrimSpace(in.Server)

	ve := utils.NewValidationError()
	if in.Game == "" {
		ve.Add("game", "game is required")
	}
	if in.GameID == "" {
		ve.Add("gameId", "game id is required")
	}
	if in.Server == "" {
		ve.Add("server", "server is required")
	}
	if err := ve.OrNil(); err != nil {
		return models.GameAccount{}, err
	}

	return s.catalog.AddGameAccount(sid, models.GameAccount{Game: in.Game, GameID: in.GameID, Server: in.Server}), nil
}

// UpdateGameAccount merges the non-nil fields into account id.
func (s *CatalogService) UpdateGameAccount(sid, id string, p store.GameAccountPatch) (models.GameAccount, error) {
	ve := utils.NewValidationError()
	for field, v := range map[string]*string{"game": p.Game, "gameId": p.GameID, "server": p.Server} {
		if v != nil && strings.TrimSpace(*v) == "" {
			ve.Add(field, field+" must not be empty")
		}
	}
	if err := ve.OrNil(); err != nil {
		return models.GameAccount{}, err
	}

	acc, err := s.catalog.UpdateGameAccount(sid, id, p)
	if errors.Is(err, store.ErrNotFound) {
		return models.GameAccount{}, utils.ErrGameAccountNotFound
	}
	return acc, err
}

// DeleteGameAccount removes account id from session sid.
func (s *CatalogService) DeleteGameAccount(sid, id string) error {
	if err := s.catalog.DeleteGameAccount(sid, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.ErrGameAccountNotFound
		}
		return err
	}
	return nil
}

// Transactions returns owner's ledger entries, most recent first.
func (s *CatalogService) Transactions(owner string) []models.Transaction {
	return s.catalog.Transactions(owner)
}

// Transaction returns transaction id when it belongs to owner.
func (s *CatalogService) Transaction(owner, id string) (models.Transaction, error) {
	tx, ok := s.catalog.GetTransaction(id)
	if !ok || tx.Owner != owner {
		return models.Transaction{}, utils.ErrTransactionNotFound
	}
	return tx, nil
}

// LoadMoreTransactions appends older history for owner and returns it.
func (s *CatalogService) LoadMoreTransactions(ctx context.Context, owner string) ([]models.Transaction, error) {
	return s.catalog.LoadMoreTransactions(ctx, owner)
}
