package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bourse/internal/errors"
	"bourse/internal/services"
	"bourse/internal/validator"
)

// MarketHandler handles market reads and admin market events
type MarketHandler struct {
	marketService services.MarketServicer
	gameService   services.GameServicer
	pricing       services.PricingServicer
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(marketService services.MarketServicer, gameService services.GameServicer, pricing services.PricingServicer) *MarketHandler {
	return &MarketHandler{marketService: marketService, gameService: gameService, pricing: pricing}
}

// currentYear resolves the game clock's year for market reads.
func (h *MarketHandler) currentYear() (int, error) {
	clock, err := h.gameService.Clock()
	if err != nil {
		return 0, err
	}
	return clock.CurrentYear, nil
}

// GetSnapshot returns the whole market grouped by category
// @Summary     Get the market snapshot
// @Description Get every listed stock for the current year grouped by category, with year-over-year changes
// @Tags        market
// @Produce     json
// @Success     200 {array} services.CategorySnapshot "Market snapshot"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /market [get]
func (h *MarketHandler) GetSnapshot(c *gin.Context) {
	year, err := h.currentYear()
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshot, err := h.marketService.Snapshot(year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "categories": snapshot})
}

// GetCategories lists the stock categories
// @Summary     List stock categories
// @Tags        market
// @Produce     json
// @Success     200 {array} string "Category slugs"
// @Router      /market/categories [get]
func (h *MarketHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": validator.Categories()})
}

// GetCategory returns the stocks of one category
// @Summary     Get stocks by category
// @Tags        market
// @Produce     json
// @Param       category path string true "Category slug"
// @Success     200 {array} services.StockQuote "Stocks in the category"
// @Failure     400 {object} ErrorResponse "Unknown category"
// @Router      /market/categories/{category} [get]
func (h *MarketHandler) GetCategory(c *gin.Context) {
	year, err := h.currentYear()
	if err != nil {
		respondWithError(c, err)
		return
	}

	quotes, err := h.marketService.StocksByCategory(c.Param("category"), year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "stocks": quotes})
}

// GetStockPrice returns a stock's freshly adjusted price
// @Summary     Get a stock's adjusted price
// @Tags        market
// @Produce     json
// @Param       id path int true "Stock ID"
// @Success     200 {object} map[string]interface{} "Adjusted price"
// @Failure     404 {object} ErrorResponse "Unknown stock"
// @Router      /market/stocks/{id}/price [get]
func (h *MarketHandler) GetStockPrice(c *gin.Context) {
	stockID, err := parsePathInt(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := h.currentYear()
	if err != nil {
		respondWithError(c, err)
		return
	}

	price, err := h.pricing.AdjustedPrice(stockID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stock_id": stockID, "year": year, "price": price})
}

// GetStockHistory returns a stock's price series
// @Summary     Get a stock's price history
// @Tags        market
// @Produce     json
// @Param       id path int true "Stock ID"
// @Success     200 {array} services.PricePoint "Price history up to the current year"
// @Failure     404 {object} ErrorResponse "Unknown stock"
// @Router      /market/stocks/{id}/history [get]
func (h *MarketHandler) GetStockHistory(c *gin.Context) {
	stockID, err := parsePathInt(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := h.currentYear()
	if err != nil {
		respondWithError(c, err)
		return
	}

	history, err := h.marketService.StockHistory(stockID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stock_id": stockID, "history": history})
}

// GetHistoricalEvents returns this year's historical events
// @Summary     Get historical events for the current year
// @Tags        market
// @Produce     json
// @Success     200 {array} models.HistoricalEvent "Events"
// @Router      /market/events [get]
func (h *MarketHandler) GetHistoricalEvents(c *gin.Context) {
	year, err := h.currentYear()
	if err != nil {
		respondWithError(c, err)
		return
	}

	events, err := h.marketService.HistoricalEvents(year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "events": events})
}

// MarketEventRequest represents the admin market event payload
type MarketEventRequest struct {
	Year               int     `json:"year" binding:"required,game_year"`
	EffectDescription  string  `json:"effect_description" binding:"required,max=255"`
	Sector             string  `json:"sector" binding:"omitempty"`
	PriceChangeFactor  float64 `json:"price_change_factor" binding:"required,change_factor"`
	DemandChangeFactor float64 `json:"demand_change_factor" binding:"required,change_factor"`
}

// CreateMarketEvent records an admin market event
// @Summary     Create a market event
// @Description Record a price/demand shock for a year, optionally scoped to one sector
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body MarketEventRequest true "Market event"
// @Success     201 {object} models.MarketDynamics "Created event"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /admin/market/events [post]
func (h *MarketHandler) CreateMarketEvent(c *gin.Context) {
	var req MarketEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	event, err := h.marketService.CreateMarketEvent(req.Year, req.EffectDescription, req.Sector, req.PriceChangeFactor, req.DemandChangeFactor)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// DemandRequest represents the admin demand modifier payload
type DemandRequest struct {
	StockID        int     `json:"stock_id" binding:"required"`
	Year           int     `json:"year" binding:"required,game_year"`
	DemandModifier float64 `json:"demand_modifier" binding:"required,change_factor"`
}

// SetDemand upserts a per-stock demand modifier
// @Summary     Set a demand modifier
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body DemandRequest true "Demand modifier"
// @Success     200 {object} models.SupplyDemand "Stored modifier"
// @Failure     404 {object} ErrorResponse "Unknown stock"
// @Router      /admin/market/demand [put]
func (h *MarketHandler) SetDemand(c *gin.Context) {
	var req DemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sd, err := h.marketService.SetDemandModifier(req.StockID, req.Year, req.DemandModifier)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"demand": sd})
}
