package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "bourse/internal/errors"
	"bourse/internal/logger"
	"bourse/internal/models"
)

type gameService struct {
	db      *gorm.DB
	trading TradingServicer
	players PlayerServicer
}

// NewGameService creates a new game service.
func NewGameService(db *gorm.DB, trading TradingServicer, players PlayerServicer) GameServicer {
	return &gameService{db: db, trading: trading, players: players}
}

// Clock returns the singleton game clock, creating it at the start year on
// first use.
func (s *gameService) Clock() (*models.GameClock, error) {
	var clock models.GameClock
	err := s.db.First(&clock).Error
	if err == nil {
		return &clock, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	clock = models.GameClock{CurrentYear: models.StartYear, GameRunning: false}
	if err := s.db.Create(&clock).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &clock, nil
}

func (s *gameService) SetRunning(running bool) (*models.GameClock, error) {
	clock, err := s.Clock()
	if err != nil {
		return nil, err
	}

	clock.GameRunning = running
	if err := s.db.Save(clock).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return clock, nil
}

func (s *gameService) SetYear(year int) (*models.GameClock, error) {
	if year < models.StartYear || year > models.TerminalYear {
		return nil, apperrors.ErrYearOutOfRange
	}

	clock, err := s.Clock()
	if err != nil {
		return nil, err
	}

	clock.CurrentYear = year
	if err := s.db.Save(clock).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return clock, nil
}

// AdvanceYear increments the current year by one. The clock never advances
// past the terminal year.
func (s *gameService) AdvanceYear() (*models.GameClock, error) {
	clock, err := s.Clock()
	if err != nil {
		return nil, err
	}
	if clock.CurrentYear >= models.TerminalYear {
		return clock, nil
	}

	clock.CurrentYear++
	if err := s.db.Save(clock).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return clock, nil
}

// StopGame liquidates every portfolio at current prices, records high scores
// and marks the game stopped. Safe to call when already stopped.
func (s *gameService) StopGame() (*models.GameClock, error) {
	clock, err := s.Clock()
	if err != nil {
		return nil, err
	}

	if err := s.trading.LiquidateAll(clock.CurrentYear); err != nil {
		return nil, err
	}
	if err := s.players.RefreshPortfolioValues(s.allPlayerNames(), clock.CurrentYear); err != nil {
		return nil, err
	}
	if err := s.players.RecordHighScores(); err != nil {
		logger.Get().Warnw("failed to record high scores on stop", "error", err)
	}

	return s.SetRunning(false)
}

// ResetGame wipes all game-scoped player state, resets the clock to the start
// year and seeds the AI roster. High scores survive the reset.
func (s *gameService) ResetGame(aiNames []string) (*models.GameClock, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.WatchList{},
			&models.CompletedSale{},
			&models.PortfolioPosition{},
			&models.Player{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.SeedAIPlayers(aiNames); err != nil {
		return nil, err
	}

	clock, err := s.SetYear(models.StartYear)
	if err != nil {
		return nil, err
	}
	clock.GameRunning = false
	if err := s.db.Save(clock).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return clock, nil
}

// SeedAIPlayers creates the named AI players with the starting balance,
// skipping any that already exist.
func (s *gameService) SeedAIPlayers(names []string) error {
	for _, name := range names {
		var existing models.Player
		err := s.db.Where("name = ?", name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		player := models.Player{Name: name, Balance: models.StartingBalance}
		if err := s.db.Create(&player).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

func (s *gameService) allPlayerNames() []string {
	var names []string
	if err := s.db.Model(&models.Player{}).Pluck("name", &names).Error; err != nil {
		logger.Get().Warnw("failed to list player names", "error", err)
		return nil
	}
	return names
}
