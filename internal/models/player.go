package models

// StartingBalance is the cash every player, human or AI, begins with.
const StartingBalance = 1000.0

// Player is a trading identity: a human team that logged in, or one of the
// fixed AI bots seeded at game reset.
type Player struct {
	ID             uint    `gorm:"primaryKey" json:"player_id"`
	Name           string  `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Balance        float64 `gorm:"not null;default:1000" json:"balance"`
	StocksOwned    int     `gorm:"not null;default:0" json:"stocks_owned"`
	PortfolioValue float64 `gorm:"not null;default:0" json:"portfolio_value"`
}

// PortfolioPosition is a player's open holding of one stock. At most one row
// exists per (player, stock); repeated buys add quantity but keep the
// original purchase price as cost basis until the position is fully sold.
// A position never persists at zero quantity: it is deleted instead.
type PortfolioPosition struct {
	ID            uint    `gorm:"primaryKey" json:"position_id"`
	PlayerID      uint    `gorm:"not null;index:idx_positions_player_stock,unique" json:"player_id"`
	StockID       int     `gorm:"not null;index:idx_positions_player_stock,unique" json:"stock_id"`
	Quantity      int     `gorm:"not null" json:"quantity"`
	PurchasePrice float64 `gorm:"not null" json:"purchase_price"`
	YearPurchased int     `gorm:"not null" json:"year_purchased"`
}

// CompletedSale is an append-only audit record of one sell event. Rows are
// never mutated after creation.
type CompletedSale struct {
	ID               uint    `gorm:"primaryKey" json:"sale_id"`
	PlayerID         uint    `gorm:"not null;index" json:"player_id"`
	StockName        string  `gorm:"size:50;not null" json:"stock_name"`
	StockID          int     `gorm:"not null;index" json:"stock_id"`
	PricePurchased   float64 `gorm:"not null" json:"price_purchased"`
	QuantitySold     int     `gorm:"not null" json:"quantity_sold"`
	PriceSold        float64 `gorm:"not null" json:"price_sold"`
	Profit           float64 `gorm:"not null" json:"profit"`
	PercentageReturn float64 `gorm:"not null" json:"percentage_return"`
	SaleYear         int     `gorm:"not null;index" json:"sale_year"`
}

// WatchList is a player's alert subscription for one stock.
type WatchList struct {
	ID                uint     `gorm:"primaryKey" json:"watchlist_id"`
	PlayerID          uint     `gorm:"not null;index:idx_watchlist_player_stock,unique" json:"player_id"`
	StockID           int      `gorm:"not null;index:idx_watchlist_player_stock,unique" json:"stock_id"`
	BirthAlert        bool     `gorm:"not null;default:false" json:"birth_alert"`
	ValueAlert        *float64 `json:"value_alert,omitempty"`
	ValueAlertEnabled bool     `gorm:"not null;default:false" json:"value_alert_enabled"`
}

// HighScore is a snapshot of a team's total value recorded at the end of a
// game, surviving game resets.
type HighScore struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	TeamName   string  `gorm:"size:50;not null" json:"team_name"`
	TotalValue float64 `gorm:"not null" json:"total_value"`
}
