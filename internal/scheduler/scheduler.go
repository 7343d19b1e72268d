// Package scheduler drives the game clock. It sleeps for the current year's
// interval, then runs one tick: reprice the market, let the AI agents trade,
// refresh cached portfolio values and advance the year. Ticks repeat until
// the clock reaches the terminal year or the game is stopped.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"bourse/internal/agents"
	"bourse/internal/logger"
	"bourse/internal/models"
	"bourse/internal/services"
)

// State is the scheduler's lifecycle state.
type State int32

const (
	// StateIdle means no tick is scheduled.
	StateIdle State = iota
	// StateScheduled means the scheduler is waiting out a year interval.
	StateScheduled
	// StateRunning means a tick is executing right now.
	StateRunning
	// StateHalted means the clock reached the terminal year.
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// TickSource abstracts the wait between years so tests can deliver ticks by
// hand.
type TickSource interface {
	After(d time.Duration) <-chan time.Time
}

type wallClock struct{}

func (wallClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Scheduler owns the year-advance loop.
type Scheduler struct {
	game          services.GameServicer
	pricing       services.PricingServicer
	players       services.PlayerServicer
	runner        *agents.Runner
	agentsEnabled bool
	source        TickSource
	log           *zap.SugaredLogger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a scheduler. A nil source uses the wall clock.
func New(game services.GameServicer, pricing services.PricingServicer, players services.PlayerServicer, runner *agents.Runner, agentsEnabled bool, source TickSource) *Scheduler {
	if source == nil {
		source = wallClock{}
	}
	return &Scheduler{
		game:          game,
		pricing:       pricing,
		players:       players,
		runner:        runner,
		agentsEnabled: agentsEnabled,
		source:        source,
		log:           logger.Named("scheduler"),
		state:         StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Start marks the game running and begins scheduling ticks. Starting an
// already-running scheduler is a no-op returning the current clock.
func (s *Scheduler) Start() (*models.GameClock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateScheduled || s.state == StateRunning {
		return s.game.Clock()
	}

	if err := s.game.SeedAIPlayers(agents.PlayerNames()); err != nil {
		return nil, err
	}
	clock, err := s.game.SetRunning(true)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateScheduled
	go s.run(ctx, s.done)

	s.log.Infow("game started", "year", clock.CurrentYear)
	return clock, nil
}

// Stop cancels the tick loop, liquidates every portfolio and marks the game
// stopped.
func (s *Scheduler) Stop() (*models.GameClock, error) {
	s.halt()
	s.setState(StateIdle)

	clock, err := s.game.StopGame()
	if err != nil {
		return nil, err
	}
	s.log.Infow("game stopped", "year", clock.CurrentYear)
	return clock, nil
}

// Restart cancels the tick loop and resets the game to the start year with a
// fresh AI roster. The new game stays idle until started again.
func (s *Scheduler) Restart() (*models.GameClock, error) {
	s.halt()
	s.setState(StateIdle)

	clock, err := s.game.ResetGame(agents.PlayerNames())
	if err != nil {
		return nil, err
	}
	s.log.Infow("game reset", "year", clock.CurrentYear)
	return clock, nil
}

// halt cancels the loop and waits for it to exit.
func (s *Scheduler) halt() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		clock, err := s.game.Clock()
		if err != nil {
			s.log.Errorw("scheduler cannot read the game clock", "error", err)
			s.setState(StateIdle)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-s.source.After(Interval(clock.CurrentYear)):
		}

		s.setState(StateRunning)
		ticked, err := s.tick()
		if err != nil {
			// A failed tick skips the year's update but never kills
			// the loop.
			s.log.Errorw("tick failed", "year", ticked, "error", err)
		}

		if ticked >= models.TerminalYear {
			s.setState(StateHalted)
			s.log.Infow("terminal year reached, scheduling halted", "year", ticked)
			return
		}
		s.setState(StateScheduled)
	}
}

// AdvanceOneTick runs a single tick immediately, outside the schedule.
func (s *Scheduler) AdvanceOneTick() error {
	s.mu.Lock()
	busy := s.state == StateRunning
	s.mu.Unlock()
	if busy {
		return nil
	}

	_, err := s.tick()
	return err
}

// tick runs one year update and returns the year it processed. The terminal
// year still reprices and trades but the clock no longer advances.
func (s *Scheduler) tick() (int, error) {
	clock, err := s.game.Clock()
	if err != nil {
		return 0, err
	}
	year := clock.CurrentYear

	if _, err := s.pricing.RepriceYear(year); err != nil {
		return year, err
	}
	if s.agentsEnabled {
		s.runner.RunAll(year)
	}
	if err := s.players.RefreshPortfolioValues(agents.PlayerNames(), year); err != nil {
		return year, err
	}

	if year < models.TerminalYear {
		if _, err := s.game.AdvanceYear(); err != nil {
			return year, err
		}
	}

	s.log.Infow("year processed", "year", year)
	return year, nil
}
