package models

// Stock is one priced listing for one game year. A listing is versioned per
// year: the same StockID appears once for every year it trades, so the
// logical identity is the (StockID, Year) pair, not the row ID.
type Stock struct {
	ID            uint     `gorm:"primaryKey" json:"-"`
	StockID       int      `gorm:"not null;index:idx_stocks_stock_year,unique" json:"stock_id"`
	Year          int      `gorm:"not null;index:idx_stocks_stock_year,unique" json:"year"`
	Name          string   `gorm:"size:50;not null" json:"name"`
	Price         float64  `gorm:"not null" json:"price"`
	Category      string   `gorm:"size:50;not null" json:"category"`
	MarketCap     float64  `gorm:"not null;default:1000" json:"market_cap"`
	AdjustedPrice *float64 `json:"adjusted_price,omitempty"`
}

// SupplyDemand holds an optional demand modifier for one stock in one year.
// Absence of a row means a neutral modifier of 1.0.
type SupplyDemand struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	StockID        int     `gorm:"not null;index" json:"stock_id"`
	Year           int     `gorm:"not null;index" json:"year"`
	DemandModifier float64 `gorm:"not null;default:1.0" json:"demand_modifier"`
}

// MarketDynamics is a year-scoped market event. Sector is nil for global
// events; multiple events for the same year compose multiplicatively.
type MarketDynamics struct {
	ID                 uint    `gorm:"primaryKey" json:"id"`
	Year               int     `gorm:"not null;index" json:"year"`
	EffectDescription  string  `gorm:"size:255;not null" json:"effect_description"`
	Sector             *string `gorm:"size:50" json:"sector,omitempty"`
	PriceChangeFactor  float64 `gorm:"not null;default:1.0" json:"price_change_factor"`
	DemandChangeFactor float64 `gorm:"not null;default:1.0" json:"demand_change_factor"`
}

// HistoricalEvent is a news item surfaced to players for a given year,
// optionally tied to a single stock.
type HistoricalEvent struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	StockID  int    `gorm:"index" json:"stock_id"`
	Category string `gorm:"size:50" json:"category"`
	Name     string `gorm:"size:100" json:"name"`
	Year     int    `gorm:"not null;index" json:"year"`
	Title    string `gorm:"size:200" json:"title"`
	Detail   string `gorm:"type:text" json:"detail"`
}
