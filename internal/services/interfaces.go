package services

import (
	"bourse/internal/models"
	"bourse/internal/pagination"
)

// PricingServicer defines the contract for the price adjustment model.
type PricingServicer interface {
	// AdjustedPrice loads the (stockID, year) listing, runs the full
	// adjustment model, persists the result and returns it.
	AdjustedPrice(stockID, year int) (float64, error)
	// Reprice runs the adjustment model for an already-loaded listing.
	// It never fails: any error degrades to the unadjusted base price.
	Reprice(stock *models.Stock, year int) float64
	// RepriceYear runs Reprice over every listing of the given year and
	// returns the listings with their cached adjusted prices set.
	RepriceYear(year int) ([]models.Stock, error)
	// ActivePrice returns the cached adjusted price if one has been
	// computed for the listing, otherwise the base price.
	ActivePrice(stock *models.Stock) float64
}

// TradeResult is the state returned after a single trade settles.
type TradeResult struct {
	Balance  float64                   `json:"balance"`
	Position *models.PortfolioPosition `json:"position,omitempty"`
}

// BatchResult is the state returned after a batch trade settles.
type BatchResult struct {
	Balance   float64                    `json:"balance"`
	Positions []models.PortfolioPosition `json:"positions"`
}

// TradingServicer is the transactional ledger. Every mutation of balances,
// positions and sale records in the system goes through it, from both the
// human trade API and the AI agents.
type TradingServicer interface {
	// Trade applies one buy (deltaShares > 0), sell (deltaShares < 0) or
	// no-op (deltaShares == 0) atomically at the given price.
	Trade(playerID uint, stockID, deltaShares int, price float64, year int) (*TradeResult, error)
	// TradeBatch applies the given stockID -> deltaShares orders as
	// independent trades inside one transaction, in map iteration order.
	// The first failure aborts the whole batch with nothing applied.
	TradeBatch(playerID uint, orders map[int]int, year int) (*BatchResult, error)
	// Positions returns a player's open positions.
	Positions(playerID uint) ([]models.PortfolioPosition, error)
	// LiquidateAll sells every open position of every player at the
	// stock's active price for the given year.
	LiquidateAll(year int) error
}

// StockQuote is one stock's market view for a year.
type StockQuote struct {
	StockID          int     `json:"stock_id"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Price            float64 `json:"price"`
	PreviousPrice    float64 `json:"previousPrice"`
	Change           float64 `json:"change"`
	PercentageChange float64 `json:"percentageChange"`
}

// CategorySnapshot groups quotes under one category heading.
type CategorySnapshot struct {
	Category string       `json:"category"`
	Stocks   []StockQuote `json:"stocks"`
}

// PricePoint is one year of a stock's base price history.
type PricePoint struct {
	Year  int     `json:"year"`
	Price float64 `json:"price"`
}

// MarketServicer defines the contract for market reads and market events.
type MarketServicer interface {
	StocksForYear(year int) ([]models.Stock, error)
	StockForYear(stockID, year int) (*models.Stock, error)
	// PriorYearPrice returns the base price of the listing one year
	// earlier, or false when the stock was not listed then.
	PriorYearPrice(stockID, year int) (float64, bool)
	StocksByCategory(category string, year int) ([]StockQuote, error)
	Snapshot(year int) ([]CategorySnapshot, error)
	StockHistory(stockID, uptoYear int) ([]PricePoint, error)
	HistoricalEvents(year int) ([]models.HistoricalEvent, error)
	HistoricalEventsForStocks(year int, stockIDs []int) ([]models.HistoricalEvent, error)
	CreateMarketEvent(year int, description, sector string, priceFactor, demandFactor float64) (*models.MarketDynamics, error)
	SetDemandModifier(stockID, year int, modifier float64) (*models.SupplyDemand, error)
}

// PlayerStanding is one row of the ranked player table.
type PlayerStanding struct {
	PlayerID   uint    `json:"player_id"`
	Name       string  `json:"name"`
	TotalValue float64 `json:"total_value"`
}

// Holding is one portfolio position enriched with current market data.
type Holding struct {
	StockID       int     `json:"stock_id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Owned         int     `json:"owned"`
	PurchasePrice float64 `json:"purchase_price"`
	CurrentValue  float64 `json:"current_value"`
	YearPurchased int     `json:"year_purchased"`
}

// WatchStatus reports the outcome of a watch list upsert.
type WatchStatus string

const (
	WatchUpdated  WatchStatus = "success"
	WatchDeleted  WatchStatus = "deleted"
	WatchNotFound WatchStatus = "not_found"
)

// PlayerServicer defines the contract for player accounts and portfolio reads.
type PlayerServicer interface {
	// LoginOrCreate returns the player with the given team name, creating
	// it with the starting balance on first login.
	LoginOrCreate(name string) (*models.Player, error)
	GetPlayerByID(id uint) (*models.Player, error)
	// PortfolioValue computes quantity x active price over a player's
	// open positions for the given year.
	PortfolioValue(playerID uint, year int) (float64, error)
	// RefreshPortfolioValues recomputes and caches portfolio values for
	// the named players.
	RefreshPortfolioValues(names []string, year int) error
	PlayerTable(year int) ([]PlayerStanding, error)
	Portfolio(playerID uint, year int) ([]Holding, error)
	CompletedSales(playerID uint, page pagination.PageRequest) (*pagination.PageResponse[models.CompletedSale], error)
	WatchList(playerID uint) ([]models.WatchList, error)
	SetWatchEntry(playerID uint, stockID int, birthAlert bool, valueAlert *float64, valueAlertEnabled bool) (WatchStatus, error)
	// RecordHighScores snapshots every player's total value to the
	// persistent leaderboard.
	RecordHighScores() error
	Leaderboard(page pagination.PageRequest) (*pagination.PageResponse[models.HighScore], error)
}

// GameServicer owns the persisted game clock and lifecycle mutations.
// Scheduling itself lives in the scheduler package; these operations only
// touch stored state.
type GameServicer interface {
	// Clock returns the singleton game clock, creating it at the start
	// year if it does not exist yet.
	Clock() (*models.GameClock, error)
	SetRunning(running bool) (*models.GameClock, error)
	SetYear(year int) (*models.GameClock, error)
	// AdvanceYear increments the current year by one.
	AdvanceYear() (*models.GameClock, error)
	// StopGame liquidates every portfolio at current prices and marks the
	// game stopped. Idempotent.
	StopGame() (*models.GameClock, error)
	// ResetGame clears players, positions, sales and watch lists, resets
	// the clock to the start year and seeds the given AI players.
	ResetGame(aiNames []string) (*models.GameClock, error)
	// SeedAIPlayers creates the named AI players if missing.
	SeedAIPlayers(names []string) error
}
