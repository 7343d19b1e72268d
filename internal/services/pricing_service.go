package services

import (
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"

	apperrors "bourse/internal/errors"
	"bourse/internal/logger"
	"bourse/internal/models"
)

const (
	// pennyStockFloor is the base price below which the adjustment model
	// does not apply. Penny stocks trade at their listed price.
	pennyStockFloor = 8.0
	// maxDrift bounds how far an adjusted price may move from its base.
	maxDrift = 10.0
	// defaultMarketCap substitutes for missing or non-positive market caps.
	defaultMarketCap = 1000.0
	// minSellingMultiplier caps how much selling pressure can depress a price.
	minSellingMultiplier = 0.5
)

type pricingService struct {
	db            *gorm.DB
	demandEnabled bool
}

// NewPricingService creates a new pricing service. When demandEnabled is
// false, per-stock demand modifiers are ignored; selling pressure and market
// events still apply.
func NewPricingService(db *gorm.DB, demandEnabled bool) PricingServicer {
	return &pricingService{db: db, demandEnabled: demandEnabled}
}

// AdjustedPrice loads the listing for (stockID, year), runs the adjustment
// model and returns the persisted adjusted price.
func (s *pricingService) AdjustedPrice(stockID, year int) (float64, error) {
	var stock models.Stock
	if err := s.db.Where("stock_id = ? AND year = ?", stockID, year).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrUnknownStock
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.Reprice(&stock, year), nil
}

// Reprice computes and persists the adjusted price for a loaded listing. The
// model must never take a stock off the board, so any failure degrades to the
// unadjusted base price.
func (s *pricingService) Reprice(stock *models.Stock, year int) float64 {
	// Penny stocks trade at their listed price; nothing is computed or
	// cached for them.
	if stock.Price < pennyStockFloor {
		return stock.Price
	}

	adjusted, err := s.compute(stock, year)
	if err != nil {
		logger.Get().Warnw("price adjustment failed, serving base price",
			"stock_id", stock.StockID, "year", year, "error", err)
		return stock.Price
	}

	if err := s.db.Model(&models.Stock{}).
		Where("id = ?", stock.ID).
		Update("adjusted_price", adjusted).Error; err != nil {
		logger.Get().Warnw("failed to persist adjusted price, serving base price",
			"stock_id", stock.StockID, "year", year, "error", err)
		return stock.Price
	}

	stock.AdjustedPrice = &adjusted
	return adjusted
}

// RepriceYear runs the adjustment model over every listing of the year.
func (s *pricingService) RepriceYear(year int) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := s.db.Where("year = ?", year).Order("stock_id asc").Find(&stocks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range stocks {
		s.Reprice(&stocks[i], year)
	}
	return stocks, nil
}

// ActivePrice returns the cached adjusted price when present, otherwise the
// base price.
func (s *pricingService) ActivePrice(stock *models.Stock) float64 {
	if stock.AdjustedPrice != nil {
		return *stock.AdjustedPrice
	}
	return stock.Price
}

// compute runs the full adjustment model:
//
//	adjusted = base x sellingMultiplier x demandModifier x eventFactors
//
// clamped to [max(base-maxDrift, 0), base+maxDrift].
func (s *pricingService) compute(stock *models.Stock, year int) (float64, error) {
	base := stock.Price

	marketCap := stock.MarketCap
	if marketCap <= 0 {
		marketCap = defaultMarketCap
	}

	totalSold, err := s.totalSold(stock.StockID, year)
	if err != nil {
		return 0, err
	}
	sellingRatio := float64(totalSold) / marketCap
	sellingMultiplier := math.Max(1.0-sellingRatio*0.1, minSellingMultiplier)

	demandModifier := 1.0
	if s.demandEnabled {
		demandModifier, err = s.demandModifier(stock.StockID, year)
		if err != nil {
			return 0, err
		}
	}

	eventFactor, err := s.eventFactor(stock.Category, year)
	if err != nil {
		return 0, err
	}

	adjusted := base * sellingMultiplier * demandModifier * eventFactor

	lower := math.Max(base-maxDrift, 0)
	upper := base + maxDrift
	if adjusted < lower {
		adjusted = lower
	}
	if adjusted > upper {
		adjusted = upper
	}
	return adjusted, nil
}

// totalSold sums the shares of the stock sold during the given year across
// all players.
func (s *pricingService) totalSold(stockID, year int) (int, error) {
	var total int64
	err := s.db.Model(&models.CompletedSale{}).
		Where("stock_id = ? AND sale_year = ?", stockID, year).
		Select("COALESCE(SUM(quantity_sold), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

// demandModifier returns the stored per-stock demand modifier for the year,
// defaulting to 1.0 when none exists.
func (s *pricingService) demandModifier(stockID, year int) (float64, error) {
	var sd models.SupplyDemand
	err := s.db.Where("stock_id = ? AND year = ?", stockID, year).First(&sd).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1.0, nil
		}
		return 0, err
	}
	return sd.DemandModifier, nil
}

// eventFactor multiplies together the price change factors of every market
// event for the year that is either global (nil sector) or targets the
// stock's category.
func (s *pricingService) eventFactor(category string, year int) (float64, error) {
	var events []models.MarketDynamics
	if err := s.db.Where("year = ?", year).Find(&events).Error; err != nil {
		return 0, err
	}

	factor := 1.0
	for _, event := range events {
		if event.Sector == nil || strings.EqualFold(*event.Sector, category) {
			factor *= event.PriceChangeFactor
		}
	}
	return factor, nil
}
