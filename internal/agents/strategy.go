// Package agents implements the AI trading strategies that act once per
// simulated year, after prices have been adjusted. Strategies trade through
// the same ledger as human players and are subject to the same balance and
// position checks.
package agents

import (
	"errors"

	apperrors "bourse/internal/errors"
	"bourse/internal/models"
	"bourse/internal/services"
)

// Trading thresholds shared by the strategies.
const (
	minBuyPrice = 8.0

	basicBuyLot   = 3
	basicSellHigh = 65.0
	basicLossGap  = 3.0

	moverLot  = 5
	moverTopN = 5

	randomActions = 10
	randomMaxLot  = 5

	valueLot       = 5
	valueMaxBuys   = 5
	valuePriceLow  = 8.0
	valuePriceHigh = 15.0
	valueSellAbove = 60.0
)

// Env bundles the services a strategy trades against.
type Env struct {
	Pricing services.PricingServicer
	Ledger  services.TradingServicer
	Market  services.MarketServicer
}

// Strategy decides and executes one year's trades for one AI player. The
// stocks slice holds every listing of the year with adjusted prices already
// computed.
type Strategy interface {
	Name() string
	Trade(player *models.Player, year int, stocks []models.Stock) error
}

// ownedSet indexes a player's open positions by stock ID.
func ownedSet(positions []models.PortfolioPosition) map[int]models.PortfolioPosition {
	owned := make(map[int]models.PortfolioPosition, len(positions))
	for _, pos := range positions {
		owned[pos.StockID] = pos
	}
	return owned
}

// recoverable reports whether a trade failure should be absorbed rather than
// abort the strategy: a bot running out of cash or shares is normal play.
func recoverable(err error) bool {
	return errors.Is(err, apperrors.ErrInsufficientFunds) ||
		errors.Is(err, apperrors.ErrInsufficientShares)
}
