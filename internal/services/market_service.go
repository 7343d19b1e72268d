package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "bourse/internal/errors"
	"bourse/internal/models"
	"bourse/internal/validator"
)

type marketService struct {
	db      *gorm.DB
	pricing PricingServicer
}

// NewMarketService creates a new market service.
func NewMarketService(db *gorm.DB, pricing PricingServicer) MarketServicer {
	return &marketService{db: db, pricing: pricing}
}

func (s *marketService) StocksForYear(year int) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := s.db.Where("year = ?", year).Order("stock_id asc").Find(&stocks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return stocks, nil
}

func (s *marketService) StockForYear(stockID, year int) (*models.Stock, error) {
	var stock models.Stock
	if err := s.db.Where("stock_id = ? AND year = ?", stockID, year).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnknownStock
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stock, nil
}

// PriorYearPrice returns the base price one year earlier, or false when the
// stock had no listing then.
func (s *marketService) PriorYearPrice(stockID, year int) (float64, bool) {
	var stock models.Stock
	err := s.db.Where("stock_id = ? AND year = ?", stockID, year-1).First(&stock).Error
	if err != nil {
		return 0, false
	}
	return stock.Price, true
}

// StocksByCategory returns quotes for every stock of a category in a year,
// with year-over-year change computed against the prior listing.
func (s *marketService) StocksByCategory(category string, year int) ([]StockQuote, error) {
	if !validCategory(category) {
		return nil, apperrors.ErrUnknownCategory
	}

	var stocks []models.Stock
	if err := s.db.Where("category = ? AND year = ?", category, year).
		Order("stock_id asc").Find(&stocks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.quotes(stocks, year), nil
}

// Snapshot returns the whole market for a year grouped by category, in
// display order.
func (s *marketService) Snapshot(year int) ([]CategorySnapshot, error) {
	var stocks []models.Stock
	if err := s.db.Where("year = ?", year).Order("stock_id asc").Find(&stocks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byCategory := make(map[string][]models.Stock)
	for _, stock := range stocks {
		byCategory[stock.Category] = append(byCategory[stock.Category], stock)
	}

	snapshot := make([]CategorySnapshot, 0, len(byCategory))
	for _, category := range validator.Categories() {
		group, ok := byCategory[category]
		if !ok {
			continue
		}
		snapshot = append(snapshot, CategorySnapshot{
			Category: category,
			Stocks:   s.quotes(group, year),
		})
	}
	return snapshot, nil
}

// StockHistory returns the base price series of a stock up to and including
// the given year.
func (s *marketService) StockHistory(stockID, uptoYear int) ([]PricePoint, error) {
	var stocks []models.Stock
	if err := s.db.Where("stock_id = ? AND year <= ?", stockID, uptoYear).
		Order("year asc").Find(&stocks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(stocks) == 0 {
		return nil, apperrors.ErrUnknownStock
	}

	history := make([]PricePoint, 0, len(stocks))
	for _, stock := range stocks {
		history = append(history, PricePoint{Year: stock.Year, Price: stock.Price})
	}
	return history, nil
}

func (s *marketService) HistoricalEvents(year int) ([]models.HistoricalEvent, error) {
	var events []models.HistoricalEvent
	if err := s.db.Where("year = ?", year).Order("stock_id asc").Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return events, nil
}

// HistoricalEventsForStocks filters the year's events to the given stock IDs.
func (s *marketService) HistoricalEventsForStocks(year int, stockIDs []int) ([]models.HistoricalEvent, error) {
	if len(stockIDs) == 0 {
		return []models.HistoricalEvent{}, nil
	}

	var events []models.HistoricalEvent
	if err := s.db.Where("year = ? AND stock_id IN ?", year, stockIDs).
		Order("stock_id asc").Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return events, nil
}

// CreateMarketEvent records a market dynamics event. An empty sector creates
// a global event that applies to every category.
func (s *marketService) CreateMarketEvent(year int, description, sector string, priceFactor, demandFactor float64) (*models.MarketDynamics, error) {
	if year < models.StartYear || year > models.TerminalYear {
		return nil, apperrors.ErrYearOutOfRange
	}
	if priceFactor <= 0 || demandFactor <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "change factors must be positive")
	}

	event := models.MarketDynamics{
		Year:               year,
		EffectDescription:  description,
		PriceChangeFactor:  priceFactor,
		DemandChangeFactor: demandFactor,
	}
	if sector != "" {
		slug := strings.ToLower(sector)
		if !validCategory(slug) {
			return nil, apperrors.ErrUnknownCategory
		}
		event.Sector = &slug
	}

	if err := s.db.Create(&event).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &event, nil
}

// SetDemandModifier upserts the per-stock demand modifier for a year.
func (s *marketService) SetDemandModifier(stockID, year int, modifier float64) (*models.SupplyDemand, error) {
	if modifier <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "demand modifier must be positive")
	}
	if _, err := s.StockForYear(stockID, year); err != nil {
		return nil, err
	}

	var sd models.SupplyDemand
	err := s.db.Where("stock_id = ? AND year = ?", stockID, year).First(&sd).Error
	switch {
	case err == nil:
		sd.DemandModifier = modifier
		if err := s.db.Save(&sd).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		sd = models.SupplyDemand{StockID: stockID, Year: year, DemandModifier: modifier}
		if err := s.db.Create(&sd).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sd, nil
}

func (s *marketService) quotes(stocks []models.Stock, year int) []StockQuote {
	quotes := make([]StockQuote, 0, len(stocks))
	for i := range stocks {
		stock := &stocks[i]
		price := s.pricing.ActivePrice(stock)

		quote := StockQuote{
			StockID:  stock.StockID,
			Name:     stock.Name,
			Category: stock.Category,
			Price:    price,
		}
		if prev, ok := s.PriorYearPrice(stock.StockID, year); ok {
			quote.PreviousPrice = prev
			quote.Change = price - prev
			if prev != 0 {
				quote.PercentageChange = quote.Change / prev * 100
			}
		}
		quotes = append(quotes, quote)
	}
	return quotes
}

func validCategory(category string) bool {
	for _, c := range validator.Categories() {
		if c == category {
			return true
		}
	}
	return false
}
