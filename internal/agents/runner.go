package agents

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"bourse/internal/logger"
	"bourse/internal/models"
	"bourse/internal/services"
)

// Agent pairs a persistent AI player name with its strategy.
type Agent struct {
	PlayerName string
	Strategy   Strategy
}

// Roster builds the fixed five-bot lineup. Each randomized strategy gets its
// own stream derived from the seed, so two games seeded alike replay the same
// bot behavior against the same market.
func Roster(env Env, seed int64) []Agent {
	return []Agent{
		{PlayerName: "Bot 1", Strategy: NewBasicBuyer(env)},
		{PlayerName: "Bot 2", Strategy: NewTopMovers(env)},
		{PlayerName: "Bot 3", Strategy: NewRandomTrader(env, rand.New(rand.NewSource(seed)))},
		{PlayerName: "Bot 4", Strategy: NewValueInvestor(env, rand.New(rand.NewSource(seed+1)))},
		{PlayerName: "Bot 5", Strategy: NewFullyRandom(env, rand.New(rand.NewSource(seed+2)))},
	}
}

// PlayerNames returns the roster's player names in order.
func PlayerNames() []string {
	return []string{"Bot 1", "Bot 2", "Bot 3", "Bot 4", "Bot 5"}
}

// Runner executes every agent once per year.
type Runner struct {
	env     Env
	players services.PlayerServicer
	agents  []Agent
	log     *zap.SugaredLogger
}

// NewRunner creates a runner over the standard roster.
func NewRunner(env Env, players services.PlayerServicer, seed int64) *Runner {
	return &Runner{env: env, players: players, agents: Roster(env, seed), log: logger.Named("agents")}
}

// RunAll runs every agent against the given year's market. A failing or
// panicking agent is logged and skipped; one bad bot never blocks the others
// or the year advance.
func (r *Runner) RunAll(year int) {
	stocks, err := r.env.Market.StocksForYear(year)
	if err != nil {
		r.log.Errorw("failed to load market for agents", "year", year, "error", err)
		return
	}
	if len(stocks) == 0 {
		return
	}

	for _, agent := range r.agents {
		if err := r.runOne(agent, year, stocks); err != nil {
			r.log.Errorw("agent failed",
				"agent", agent.Strategy.Name(), "player", agent.PlayerName, "year", year, "error", err)
		}
	}
}

func (r *Runner) runOne(agent Agent, year int, stocks []models.Stock) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("agent panicked: %v", rec)
		}
	}()

	player, err := r.players.LoginOrCreate(agent.PlayerName)
	if err != nil {
		return err
	}
	return agent.Strategy.Trade(player, year, stocks)
}
