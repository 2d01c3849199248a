package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_storefront/internal/middleware"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// GameAccountHandler manages the game accounts saved in a customer session.
type GameAccountHandler struct {
	catalogService *service.CatalogService
}

// NewGameAccountHandler creates a new GameAccountHandler.
func NewGameAccountHandler(catalogService *service.CatalogService) *GameAccountHandler {
	return &GameAccountHandler{catalogService: catalogService}
}

// List handles GET /v1/game-accounts
func (h *GameAccountHandler) List(c *gin.Context) {
	accounts := h.catalogService.GameAccounts(middleware.GetSessionID(c))
	utils.Success(c, 200, "Game accounts retrieved", accounts)
}

// Create handles POST /v1/game-accounts
func (h *GameAccountHandler) Create(c *gin.Context) {
	var req struct {
		Game   string `json:"game" binding:"required"`
		GameID string `json:"gameId" binding:"required"`
		Server string `json:"server" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	acc, err := h.catalogService.AddGameAccount(middleware.GetSessionID(c), service.GameAccountInput{
		Game:   req.Game,
		GameID: req.GameID,
		Server: req.Server,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 201, "Game account saved", acc)
}

// Update handles PUT /v1/game-accounts/:id
func (h *GameAccountHandler) Update(c *gin.Context) {
	var req struct {
		Game   *string `json:"game"`
		GameID *string `json:"gameId"`
		Server *string `json:"server"`
	}
	if !bindJSON(c, &req) {
		return
	}

	acc, err := h.catalogService.UpdateGameAccount(middleware.GetSessionID(c), c.Param("id"), store.GameAccountPatch{
		Game:   req.Game,
		GameID: req.GameID,
		Server: req.Server,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Game account updated", acc)
}

// Delete handles DELETE /v1/game-accounts/:id
func (h *GameAccountHandler) Delete(c *gin.Context) {
	if err := h.catalogService.DeleteGameAccount(middleware.GetSessionID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Game account deleted", nil)
}
