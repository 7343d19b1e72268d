package scheduler

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"bourse/internal/agents"
	"bourse/internal/models"
	"bourse/internal/services"
	"bourse/internal/testutil"
)

func TestInterval(t *testing.T) {
	cases := []struct {
		year    int
		seconds int
	}{
		{1900, 30},
		{1901, 18},
		{1910, 30},
		{1949, 18},
		{1950, 30},
		{1951, 25},
		{1980, 30},
		{1989, 25},
		{1990, 40},
		{1991, 30},
		{1999, 30},
		{2000, 45},
		{2001, 30},
		{2009, 30},
		{2010, 45},
		{2011, 40},
		{2019, 40},
		{2020, 45},
		{2023, 45},
		{2024, 60},
	}

	for _, tc := range cases {
		if got := Interval(tc.year); got != time.Duration(tc.seconds)*time.Second {
			t.Errorf("Interval(%d) = %v, expected %ds", tc.year, got, tc.seconds)
		}
	}
}

// manualTicks delivers ticks by hand regardless of the requested duration.
type manualTicks struct {
	c chan time.Time
}

func (m *manualTicks) After(time.Duration) <-chan time.Time { return m.c }

func newTestScheduler(db *gorm.DB, source TickSource) *Scheduler {
	pricing := services.NewPricingService(db, true)
	trading := services.NewTradingService(db, pricing)
	players := services.NewPlayerService(db, pricing)
	market := services.NewMarketService(db, pricing)
	game := services.NewGameService(db, trading, players)
	runner := agents.NewRunner(agents.Env{Pricing: pricing, Ledger: trading, Market: market}, players, 1)
	return New(game, pricing, players, runner, true, source)
}

func currentYear(t *testing.T, db *gorm.DB) int {
	t.Helper()
	var clock models.GameClock
	testutil.AssertNoError(t, db.First(&clock).Error)
	return clock.CurrentYear
}

func waitForYear(t *testing.T, db *gorm.DB, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if currentYear(t, db) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("clock never reached %d, still at %d", want, currentYear(t, db))
}

func TestAdvanceOneTick(t *testing.T) {
	t.Run("reprices, trades and advances the year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		sched := newTestScheduler(db, &manualTicks{c: make(chan time.Time)})

		testutil.CreateTestGame(t, db, 1950)
		for _, name := range agents.PlayerNames() {
			testutil.CreateTestPlayerWithName(t, db, name, 1000)
		}
		stock := testutil.CreateTestStock(t, db, 1, 1950, 10)

		testutil.AssertNoError(t, sched.AdvanceOneTick())

		if year := currentYear(t, db); year != 1951 {
			t.Errorf("expected year 1951, got %d", year)
		}

		testutil.AssertNoError(t, db.First(stock, stock.ID).Error)
		if stock.AdjustedPrice == nil {
			t.Error("expected the tick to reprice the market")
		}

		var positions int64
		testutil.AssertNoError(t, db.Model(&models.PortfolioPosition{}).Count(&positions).Error)
		if positions == 0 {
			t.Error("expected the agents to trade during the tick")
		}
	})

	t.Run("terminal year ticks without advancing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		sched := newTestScheduler(db, &manualTicks{c: make(chan time.Time)})

		testutil.CreateTestGame(t, db, models.TerminalYear)
		for _, name := range agents.PlayerNames() {
			testutil.CreateTestPlayerWithName(t, db, name, 1000)
		}
		stock := testutil.CreateTestStock(t, db, 1, models.TerminalYear, 10)

		testutil.AssertNoError(t, sched.AdvanceOneTick())

		if year := currentYear(t, db); year != models.TerminalYear {
			t.Errorf("expected the clock to stay at %d, got %d", models.TerminalYear, year)
		}
		testutil.AssertNoError(t, db.First(stock, stock.ID).Error)
		if stock.AdjustedPrice == nil {
			t.Error("expected the terminal tick to still reprice the market")
		}
	})
}

func TestSchedulerLifecycle(t *testing.T) {
	t.Run("start schedules ticks that advance the clock", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ticks := &manualTicks{c: make(chan time.Time)}
		sched := newTestScheduler(db, ticks)

		testutil.CreateTestGame(t, db, 1950)
		testutil.CreateTestStock(t, db, 1, 1950, 10)

		clock, err := sched.Start()
		testutil.AssertNoError(t, err)
		if !clock.GameRunning {
			t.Error("expected the game to be marked running")
		}
		if sched.State() != StateScheduled {
			t.Errorf("expected scheduled state, got %v", sched.State())
		}

		ticks.c <- time.Now()
		waitForYear(t, db, 1951)

		_, err = sched.Stop()
		testutil.AssertNoError(t, err)
	})

	t.Run("starting twice does not double-schedule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ticks := &manualTicks{c: make(chan time.Time)}
		sched := newTestScheduler(db, ticks)

		testutil.CreateTestGame(t, db, 1950)

		_, err := sched.Start()
		testutil.AssertNoError(t, err)
		_, err = sched.Start()
		testutil.AssertNoError(t, err)

		_, err = sched.Stop()
		testutil.AssertNoError(t, err)
	})

	t.Run("stop liquidates portfolios and goes idle", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ticks := &manualTicks{c: make(chan time.Time)}
		sched := newTestScheduler(db, ticks)

		testutil.CreateTestGame(t, db, 1950)
		player := testutil.CreateTestPlayerWithName(t, db, "Humans", 100)
		testutil.CreateTestStock(t, db, 1, 1950, 10)
		testutil.CreateTestPosition(t, db, player.ID, 1, 2, 8, 1949)

		_, err := sched.Start()
		testutil.AssertNoError(t, err)

		clock, err := sched.Stop()
		testutil.AssertNoError(t, err)
		if clock.GameRunning {
			t.Error("expected the game to be stopped")
		}
		if sched.State() != StateIdle {
			t.Errorf("expected idle state, got %v", sched.State())
		}

		var positions int64
		testutil.AssertNoError(t, db.Model(&models.PortfolioPosition{}).Count(&positions).Error)
		if positions != 0 {
			t.Errorf("expected portfolios liquidated, got %d positions", positions)
		}
	})

	t.Run("restart resets the game to the start year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ticks := &manualTicks{c: make(chan time.Time)}
		sched := newTestScheduler(db, ticks)

		testutil.CreateTestGame(t, db, 1999)
		testutil.CreateTestPlayerWithName(t, db, "Humans", 700)

		clock, err := sched.Restart()
		testutil.AssertNoError(t, err)

		if clock.CurrentYear != models.StartYear || clock.GameRunning {
			t.Errorf("expected a fresh stopped game, got %+v", clock)
		}

		var players []models.Player
		testutil.AssertNoError(t, db.Order("name asc").Find(&players).Error)
		if len(players) != len(agents.PlayerNames()) {
			t.Fatalf("expected only the AI roster, got %d players", len(players))
		}
	})
}
