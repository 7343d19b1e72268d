package agents

import "bourse/internal/models"

// basicBuyer accumulates small lots of everything it can afford and exits a
// position on a fixed stop-loss or take-profit threshold.
type basicBuyer struct {
	env Env
}

// NewBasicBuyer creates the buy-everything strategy.
func NewBasicBuyer(env Env) Strategy {
	return &basicBuyer{env: env}
}

func (b *basicBuyer) Name() string { return "basic buyer" }

func (b *basicBuyer) Trade(player *models.Player, year int, stocks []models.Stock) error {
	positions, err := b.env.Ledger.Positions(player.ID)
	if err != nil {
		return err
	}
	owned := ownedSet(positions)

	for i := range stocks {
		stock := &stocks[i]
		price := b.env.Pricing.ActivePrice(stock)
		if price < minBuyPrice {
			continue
		}
		if _, held := owned[stock.StockID]; held {
			continue
		}
		if _, err := b.env.Ledger.Trade(player.ID, stock.StockID, basicBuyLot, price, year); err != nil {
			if recoverable(err) {
				continue
			}
			return err
		}
	}

	// Re-read positions so lots bought this year are also candidates for
	// the exit rules.
	positions, err = b.env.Ledger.Positions(player.ID)
	if err != nil {
		return err
	}
	for _, pos := range positions {
		stock, err := b.env.Market.StockForYear(pos.StockID, year)
		if err != nil {
			continue
		}
		price := b.env.Pricing.ActivePrice(stock)
		if price < pos.PurchasePrice-basicLossGap || price > basicSellHigh {
			if _, err := b.env.Ledger.Trade(player.ID, pos.StockID, -pos.Quantity, price, year); err != nil && !recoverable(err) {
				return err
			}
		}
	}
	return nil
}
