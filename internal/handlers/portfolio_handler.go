package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "bourse/internal/errors"
	"bourse/internal/pagination"
	"bourse/internal/services"
)

// PortfolioHandler handles trades and portfolio reads for the logged-in team
type PortfolioHandler struct {
	tradingService services.TradingServicer
	playerService  services.PlayerServicer
	marketService  services.MarketServicer
	gameService    services.GameServicer
	pricing        services.PricingServicer
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(tradingService services.TradingServicer, playerService services.PlayerServicer, marketService services.MarketServicer, gameService services.GameServicer, pricing services.PricingServicer) *PortfolioHandler {
	return &PortfolioHandler{
		tradingService: tradingService,
		playerService:  playerService,
		marketService:  marketService,
		gameService:    gameService,
		pricing:        pricing,
	}
}

func (h *PortfolioHandler) currentYear() (int, error) {
	clock, err := h.gameService.Clock()
	if err != nil {
		return 0, err
	}
	return clock.CurrentYear, nil
}

// TradeRequest represents a single trade. A positive quantity buys, a
// negative quantity sells.
type TradeRequest struct {
	StockID  int `json:"stock_id" binding:"required"`
	Quantity int `json:"quantity"`
}

// Trade executes one buy or sell at the stock's current active price
// @Summary     Trade a stock
// @Description Buy (positive quantity) or sell (negative quantity) at the current adjusted price
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TradeRequest true "Trade order"
// @Success     200 {object} services.TradeResult "Settled trade"
// @Failure     400 {object} ErrorResponse "Insufficient funds or shares"
// @Failure     404 {object} ErrorResponse "Unknown stock"
// @Router      /portfolio/trade [post]
func (h *PortfolioHandler) Trade(c *gin.Context) {
	playerID, err := getPlayerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	year, err := h.currentYear()
	if err != nil {
		respondWithError(c, err)
		return
	}
	stock, err := h.marketService.StockForYear(req.StockID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.tradingService.Trade(playerID, req.StockID, req.Quantity, h.pricing.ActivePrice(stock), year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// TradeBatch executes several orders atomically
// @Summary     Trade a basket of stocks
// @Description Apply a map of stock ID to share delta as one all-or-nothing transaction
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body map[string]number true "Stock ID to share delta"
// @Success     200 {object} services.BatchResult "Settled batch"
// @Failure     400 {object} ErrorResponse "Invalid quantity or insufficient funds"
// @Router      /portfolio/trade/batch [post]
func (h *PortfolioHandler) TradeBatch(c *gin.Context) {
	playerID, err := getPlayerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Quantities arrive as JSON numbers; reject fractional share counts
	// before they reach the ledger.
	var raw map[string]float64
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	orders := make(map[int]int, len(raw))
	for key, delta := range raw {
		stockID, err := strconv.Atoi(key)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid stock id "+key))
			return
		}
		if delta != math.Trunc(delta) {
			respondWithError(c, apperrors.ErrInvalidQuantity)
			return
		}
		orders[stockID] = int(delta)
	}

	year, err := h.currentYear()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.tradingService.TradeBatch(playerID, orders, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"balance":   result.Balance,
		"positions": result.Positions,
	})
}

// GetPortfolio returns the team's open positions with market values
// @Summary     Get the portfolio
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.Holding "Open positions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portfolio [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	playerID, err := getPlayerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := h.currentYear()
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdings, err := h.playerService.Portfolio(playerID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	value, err := h.playerService.PortfolioValue(playerID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":            year,
		"holdings":        holdings,
		"portfolio_value": value,
	})
}

// GetSales returns the team's completed sales
// @Summary     Get completed sales
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.CompletedSale] "Sales history"
// @Router      /portfolio/sales [get]
func (h *PortfolioHandler) GetSales(c *gin.Context) {
	playerID, err := getPlayerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sales, err := h.playerService.CompletedSales(playerID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sales)
}

// GetWatchList returns the team's watch list
// @Summary     Get the watch list
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.WatchList "Watch list entries"
// @Router      /portfolio/watchlist [get]
func (h *PortfolioHandler) GetWatchList(c *gin.Context) {
	playerID, err := getPlayerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.playerService.WatchList(playerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"watchlist": entries})
}

// WatchRequest represents a watch list upsert
type WatchRequest struct {
	StockID           int      `json:"stock_id" binding:"required"`
	BirthAlert        bool     `json:"birth_alert"`
	ValueAlert        *float64 `json:"value_alert"`
	ValueAlertEnabled bool     `json:"value_alert_enabled"`
}

// SetWatch creates, updates or removes a watch list entry
// @Summary     Set a watch list entry
// @Description Upsert alerts for a stock; disabling every alert removes the entry
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body WatchRequest true "Watch list entry"
// @Success     200 {object} map[string]string "Upsert status"
// @Router      /portfolio/watchlist [put]
func (h *PortfolioHandler) SetWatch(c *gin.Context) {
	playerID, err := getPlayerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	status, err := h.playerService.SetWatchEntry(playerID, req.StockID, req.BirthAlert, req.ValueAlert, req.ValueAlertEnabled)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(status)})
}
