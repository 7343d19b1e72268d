package agents

import (
	"sort"

	"bourse/internal/models"
)

// topMovers chases momentum: it ranks stocks by year-over-year price gain and
// buys the biggest gainers it does not already hold.
type topMovers struct {
	env Env
}

// NewTopMovers creates the momentum strategy.
func NewTopMovers(env Env) Strategy {
	return &topMovers{env: env}
}

func (t *topMovers) Name() string { return "top movers" }

type mover struct {
	stock *models.Stock
	price float64
	gain  float64
}

func (t *topMovers) Trade(player *models.Player, year int, stocks []models.Stock) error {
	positions, err := t.env.Ledger.Positions(player.ID)
	if err != nil {
		return err
	}
	owned := ownedSet(positions)

	movers := make([]mover, 0, len(stocks))
	for i := range stocks {
		stock := &stocks[i]
		price := t.env.Pricing.ActivePrice(stock)
		// A debut listing has no prior price; it ranks with zero gain.
		prev, ok := t.env.Market.PriorYearPrice(stock.StockID, year)
		if !ok {
			prev = price
		}
		movers = append(movers, mover{stock: stock, price: price, gain: price - prev})
	}
	sort.SliceStable(movers, func(i, j int) bool { return movers[i].gain > movers[j].gain })

	if len(movers) > moverTopN {
		movers = movers[:moverTopN]
	}

	var last *mover
	for i := range movers {
		candidate := &movers[i]
		last = candidate
		if _, held := owned[candidate.stock.StockID]; held {
			continue
		}
		if candidate.price < minBuyPrice {
			continue
		}
		if _, err := t.env.Ledger.Trade(player.ID, candidate.stock.StockID, moverLot, candidate.price, year); err != nil {
			if recoverable(err) {
				continue
			}
			return err
		}
	}

	// Only the last ranked candidate is ever sold. The liquidation target
	// comes from the post-buy portfolio, so a position opened this very
	// pass gets dumped too.
	if last != nil {
		held, err := t.env.Ledger.Positions(player.ID)
		if err != nil {
			return err
		}
		for _, pos := range held {
			if pos.StockID != last.stock.StockID {
				continue
			}
			if _, err := t.env.Ledger.Trade(player.ID, pos.StockID, -pos.Quantity, last.price, year); err != nil && !recoverable(err) {
				return err
			}
			break
		}
	}
	return nil
}
