package agents

import (
	"math/rand"

	"bourse/internal/models"
)

// valueInvestor buys cheap: it shuffles the stocks priced in the value band
// and picks up a handful, selling once a holding runs up past its target.
type valueInvestor struct {
	env Env
	rng *rand.Rand
}

// NewValueInvestor creates the bargain-hunting strategy.
func NewValueInvestor(env Env, rng *rand.Rand) Strategy {
	return &valueInvestor{env: env, rng: rng}
}

func (v *valueInvestor) Name() string { return "value investor" }

func (v *valueInvestor) Trade(player *models.Player, year int, stocks []models.Stock) error {
	positions, err := v.env.Ledger.Positions(player.ID)
	if err != nil {
		return err
	}
	owned := ownedSet(positions)

	type pick struct {
		stock *models.Stock
		price float64
	}
	candidates := make([]pick, 0, len(stocks))
	for i := range stocks {
		stock := &stocks[i]
		price := v.env.Pricing.ActivePrice(stock)
		if price >= valuePriceLow && price < valuePriceHigh {
			candidates = append(candidates, pick{stock: stock, price: price})
		}
	}
	v.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	bought := 0
	for _, candidate := range candidates {
		if bought >= valueMaxBuys {
			break
		}
		if _, held := owned[candidate.stock.StockID]; held {
			continue
		}
		if _, err := v.env.Ledger.Trade(player.ID, candidate.stock.StockID, valueLot, candidate.price, year); err != nil {
			if recoverable(err) {
				continue
			}
			return err
		}
		bought++
	}

	for _, pos := range positions {
		stock, err := v.env.Market.StockForYear(pos.StockID, year)
		if err != nil {
			continue
		}
		price := v.env.Pricing.ActivePrice(stock)
		if price > valueSellAbove {
			if _, err := v.env.Ledger.Trade(player.ID, pos.StockID, -pos.Quantity, price, year); err != nil && !recoverable(err) {
				return err
			}
		}
	}
	return nil
}
