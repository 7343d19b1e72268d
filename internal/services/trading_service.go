package services

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	apperrors "bourse/internal/errors"
	"bourse/internal/logger"
	"bourse/internal/models"
)

type tradingService struct {
	db      *gorm.DB
	pricing PricingServicer

	// locks serializes trades per player. Within a player, balance and
	// position updates happen strictly one at a time; across players,
	// trades run concurrently.
	locks sync.Map // playerID -> *sync.Mutex
}

// NewTradingService creates a new trading service.
func NewTradingService(db *gorm.DB, pricing PricingServicer) TradingServicer {
	return &tradingService{db: db, pricing: pricing}
}

func (s *tradingService) playerLock(playerID uint) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(playerID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Trade applies one buy, sell or no-op atomically. The position, sale record,
// and balance all commit together or not at all.
func (s *tradingService) Trade(playerID uint, stockID, deltaShares int, price float64, year int) (*TradeResult, error) {
	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	var result *TradeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.applyTrade(tx, playerID, stockID, deltaShares, price, year)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TradeBatch applies each order as an independent trade inside a single
// transaction. One failing order rolls back the whole batch.
func (s *tradingService) TradeBatch(playerID uint, orders map[int]int, year int) (*BatchResult, error) {
	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	var result *BatchResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var balance float64
		for stockID, delta := range orders {
			stock, err := s.loadStock(tx, stockID, year)
			if err != nil {
				return err
			}
			trade, err := s.applyTrade(tx, playerID, stockID, delta, s.pricing.ActivePrice(stock), year)
			if err != nil {
				return err
			}
			balance = trade.Balance
		}

		if len(orders) == 0 {
			var player models.Player
			if err := tx.First(&player, playerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrUnknownPlayer
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			balance = player.Balance
		}

		var positions []models.PortfolioPosition
		if err := tx.Where("player_id = ?", playerID).Order("stock_id asc").Find(&positions).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result = &BatchResult{Balance: balance, Positions: positions}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Positions returns a player's open positions ordered by stock ID.
func (s *tradingService) Positions(playerID uint) ([]models.PortfolioPosition, error) {
	var positions []models.PortfolioPosition
	if err := s.db.Where("player_id = ?", playerID).Order("stock_id asc").Find(&positions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return positions, nil
}

// LiquidateAll sells every open position of every player at the active price
// for the year. Positions whose stock has no listing for the year are logged
// and skipped.
func (s *tradingService) LiquidateAll(year int) error {
	var players []models.Player
	if err := s.db.Order("id asc").Find(&players).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, player := range players {
		positions, err := s.Positions(player.ID)
		if err != nil {
			return err
		}
		for _, pos := range positions {
			stock, err := s.loadStock(s.db, pos.StockID, year)
			if err != nil {
				logger.Get().Warnw("skipping liquidation of unlisted stock",
					"player_id", player.ID, "stock_id", pos.StockID, "year", year, "error", err)
				continue
			}
			if _, err := s.Trade(player.ID, pos.StockID, -pos.Quantity, s.pricing.ActivePrice(stock), year); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyTrade mutates player balance, position and sale records for one trade
// inside the caller's transaction.
func (s *tradingService) applyTrade(tx *gorm.DB, playerID uint, stockID, deltaShares int, price float64, year int) (*TradeResult, error) {
	var player models.Player
	if err := tx.First(&player, playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnknownPlayer
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var stock *models.Stock
	if deltaShares != 0 {
		var err error
		stock, err = s.loadStock(tx, stockID, year)
		if err != nil {
			return nil, err
		}
	}

	var position models.PortfolioPosition
	posErr := tx.Where("player_id = ? AND stock_id = ?", playerID, stockID).First(&position).Error
	if posErr != nil && !errors.Is(posErr, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, posErr)
	}
	hasPosition := posErr == nil

	switch {
	case deltaShares == 0:
		// No-op trade returns current state without touching anything.

	case deltaShares > 0:
		cost := float64(deltaShares) * price
		if player.Balance < cost {
			return nil, apperrors.ErrInsufficientFunds
		}
		player.Balance -= cost
		player.StocksOwned += deltaShares

		if hasPosition {
			// Cost basis sticks at the first purchase price.
			position.Quantity += deltaShares
			if err := tx.Save(&position).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		} else {
			position = models.PortfolioPosition{
				PlayerID:      playerID,
				StockID:       stockID,
				Quantity:      deltaShares,
				PurchasePrice: price,
				YearPurchased: year,
			}
			if err := tx.Create(&position).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			hasPosition = true
		}

	default: // deltaShares < 0
		quantity := -deltaShares
		if !hasPosition || position.Quantity < quantity {
			return nil, apperrors.ErrInsufficientShares
		}

		revenue := float64(quantity) * price
		player.Balance += revenue
		player.StocksOwned -= quantity

		costBasis := float64(quantity) * position.PurchasePrice
		profit := revenue - costBasis
		percentageReturn := 0.0
		if position.PurchasePrice > 0 {
			percentageReturn = profit / costBasis * 100
		}

		sale := models.CompletedSale{
			PlayerID:         playerID,
			StockName:        stock.Name,
			StockID:          stockID,
			PricePurchased:   position.PurchasePrice,
			QuantitySold:     quantity,
			PriceSold:        price,
			Profit:           profit,
			PercentageReturn: percentageReturn,
			SaleYear:         year,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		position.Quantity -= quantity
		if position.Quantity == 0 {
			if err := tx.Delete(&position).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			hasPosition = false
		} else {
			if err := tx.Save(&position).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
	}

	if err := tx.Save(&player).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &TradeResult{Balance: player.Balance}
	if hasPosition {
		pos := position
		result.Position = &pos
	}
	return result, nil
}

func (s *tradingService) loadStock(tx *gorm.DB, stockID, year int) (*models.Stock, error) {
	var stock models.Stock
	if err := tx.Where("stock_id = ? AND year = ?", stockID, year).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnknownStock
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stock, nil
}
