package agents

import (
	"math/rand"

	"bourse/internal/models"
)

// randomTrader flips a coin ten times a year: heads buys a small random lot
// of a stock it does not hold, tails dumps a random position.
type randomTrader struct {
	env  Env
	name string
	rng  *rand.Rand
}

// NewRandomTrader creates the coin-flip strategy with its own random stream.
func NewRandomTrader(env Env, rng *rand.Rand) Strategy {
	return &randomTrader{env: env, name: "random trader", rng: rng}
}

// NewFullyRandom creates a second coin-flip trader. It plays by the same
// rules as the random trader but on an independent random stream, so the two
// bots diverge over a game.
func NewFullyRandom(env Env, rng *rand.Rand) Strategy {
	return &randomTrader{env: env, name: "fully random", rng: rng}
}

func (r *randomTrader) Name() string { return r.name }

func (r *randomTrader) Trade(player *models.Player, year int, stocks []models.Stock) error {
	for action := 0; action < randomActions; action++ {
		positions, err := r.env.Ledger.Positions(player.ID)
		if err != nil {
			return err
		}
		owned := ownedSet(positions)

		if r.rng.Intn(2) == 0 {
			if err := r.buyRandom(player, year, stocks, owned); err != nil {
				return err
			}
		} else {
			if err := r.sellRandom(player, year, positions); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *randomTrader) buyRandom(player *models.Player, year int, stocks []models.Stock, owned map[int]models.PortfolioPosition) error {
	candidates := make([]*models.Stock, 0, len(stocks))
	for i := range stocks {
		if _, held := owned[stocks[i].StockID]; !held {
			candidates = append(candidates, &stocks[i])
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	stock := candidates[r.rng.Intn(len(candidates))]
	quantity := r.rng.Intn(randomMaxLot) + 1
	price := r.env.Pricing.ActivePrice(stock)
	if price < minBuyPrice {
		return nil
	}

	if _, err := r.env.Ledger.Trade(player.ID, stock.StockID, quantity, price, year); err != nil && !recoverable(err) {
		return err
	}
	return nil
}

func (r *randomTrader) sellRandom(player *models.Player, year int, positions []models.PortfolioPosition) error {
	if len(positions) == 0 {
		return nil
	}

	pos := positions[r.rng.Intn(len(positions))]
	stock, err := r.env.Market.StockForYear(pos.StockID, year)
	if err != nil {
		return nil
	}
	price := r.env.Pricing.ActivePrice(stock)

	if _, err := r.env.Ledger.Trade(player.ID, pos.StockID, -pos.Quantity, price, year); err != nil && !recoverable(err) {
		return err
	}
	return nil
}
