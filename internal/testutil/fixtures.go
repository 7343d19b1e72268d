package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"bourse/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestGame creates the singleton game clock row at the given year.
func CreateTestGame(t *testing.T, db *gorm.DB, year int) *models.GameClock {
	t.Helper()

	game := &models.GameClock{CurrentYear: year, GameRunning: false}
	if err := db.Create(game).Error; err != nil {
		t.Fatalf("failed to create test game clock: %v", err)
	}
	return game
}

// CreateTestPlayer creates a player with the given balance and a unique name.
func CreateTestPlayer(t *testing.T, db *gorm.DB, balance float64) *models.Player {
	t.Helper()
	return CreateTestPlayerWithName(t, db, fmt.Sprintf("Team %d", nextID()), balance)
}

// CreateTestPlayerWithName creates a player with the given name and balance.
func CreateTestPlayerWithName(t *testing.T, db *gorm.DB, name string, balance float64) *models.Player {
	t.Helper()

	player := &models.Player{Name: name, Balance: balance}
	if err := db.Create(player).Error; err != nil {
		t.Fatalf("failed to create test player: %v", err)
	}
	return player
}

// CreateTestStock creates a stock listing for one year with a default market cap.
func CreateTestStock(t *testing.T, db *gorm.DB, stockID, year int, price float64) *models.Stock {
	t.Helper()
	return CreateTestStockFull(t, db, stockID, year, price, "business", 1000)
}

// CreateTestStockFull creates a stock listing with explicit category and market cap.
func CreateTestStockFull(t *testing.T, db *gorm.DB, stockID, year int, price float64, category string, marketCap float64) *models.Stock {
	t.Helper()

	stock := &models.Stock{
		StockID:   stockID,
		Year:      year,
		Name:      fmt.Sprintf("Stock %d", stockID),
		Price:     price,
		Category:  category,
		MarketCap: marketCap,
	}
	if err := db.Create(stock).Error; err != nil {
		t.Fatalf("failed to create test stock: %v", err)
	}
	return stock
}

// CreateTestPosition creates an open portfolio position.
func CreateTestPosition(t *testing.T, db *gorm.DB, playerID uint, stockID, quantity int, purchasePrice float64, year int) *models.PortfolioPosition {
	t.Helper()

	pos := &models.PortfolioPosition{
		PlayerID:      playerID,
		StockID:       stockID,
		Quantity:      quantity,
		PurchasePrice: purchasePrice,
		YearPurchased: year,
	}
	if err := db.Create(pos).Error; err != nil {
		t.Fatalf("failed to create test position: %v", err)
	}
	return pos
}

// CreateTestSale records a completed sale for a player.
func CreateTestSale(t *testing.T, db *gorm.DB, playerID uint, stockID, quantity, year int) *models.CompletedSale {
	t.Helper()

	sale := &models.CompletedSale{
		PlayerID:     playerID,
		StockName:    fmt.Sprintf("Stock %d", stockID),
		StockID:      stockID,
		QuantitySold: quantity,
		SaleYear:     year,
	}
	if err := db.Create(sale).Error; err != nil {
		t.Fatalf("failed to create test sale: %v", err)
	}
	return sale
}

// CreateTestDemand creates a supply/demand modifier row for a stock year.
func CreateTestDemand(t *testing.T, db *gorm.DB, stockID, year int, modifier float64) *models.SupplyDemand {
	t.Helper()

	sd := &models.SupplyDemand{StockID: stockID, Year: year, DemandModifier: modifier}
	if err := db.Create(sd).Error; err != nil {
		t.Fatalf("failed to create test supply/demand row: %v", err)
	}
	return sd
}

// CreateTestMarketEvent creates a market dynamics event. Pass an empty sector
// for a global event.
func CreateTestMarketEvent(t *testing.T, db *gorm.DB, year int, sector string, priceFactor, demandFactor float64) *models.MarketDynamics {
	t.Helper()

	event := &models.MarketDynamics{
		Year:               year,
		EffectDescription:  fmt.Sprintf("Test event %d", nextID()),
		PriceChangeFactor:  priceFactor,
		DemandChangeFactor: demandFactor,
	}
	if sector != "" {
		event.Sector = &sector
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to create test market event: %v", err)
	}
	return event
}
