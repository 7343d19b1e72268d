package services

import (
	"errors"
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"

	apperrors "bourse/internal/errors"
	"bourse/internal/models"
	"bourse/internal/pagination"
)

type playerService struct {
	db      *gorm.DB
	pricing PricingServicer
}

// NewPlayerService creates a new player service.
func NewPlayerService(db *gorm.DB, pricing PricingServicer) PlayerServicer {
	return &playerService{db: db, pricing: pricing}
}

// LoginOrCreate returns the player with the given team name, creating it with
// the starting balance on first login.
func (s *playerService) LoginOrCreate(name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "team name is required")
	}

	var player models.Player
	err := s.db.Where("name = ?", name).First(&player).Error
	if err == nil {
		return &player, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	player = models.Player{Name: name, Balance: models.StartingBalance}
	if err := s.db.Create(&player).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &player, nil
}

func (s *playerService) GetPlayerByID(id uint) (*models.Player, error) {
	var player models.Player
	if err := s.db.First(&player, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnknownPlayer
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &player, nil
}

// PortfolioValue sums quantity x active price over a player's open positions.
// Positions whose stock has no listing for the year contribute nothing.
func (s *playerService) PortfolioValue(playerID uint, year int) (float64, error) {
	var positions []models.PortfolioPosition
	if err := s.db.Where("player_id = ?", playerID).Find(&positions).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := 0.0
	for _, pos := range positions {
		var stock models.Stock
		if err := s.db.Where("stock_id = ? AND year = ?", pos.StockID, year).First(&stock).Error; err != nil {
			continue
		}
		total += float64(pos.Quantity) * s.pricing.ActivePrice(&stock)
	}
	return total, nil
}

// RefreshPortfolioValues recomputes and caches portfolio values for the named
// players.
func (s *playerService) RefreshPortfolioValues(names []string, year int) error {
	var players []models.Player
	if err := s.db.Where("name IN ?", names).Find(&players).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, player := range players {
		value, err := s.PortfolioValue(player.ID, year)
		if err != nil {
			return err
		}
		if err := s.db.Model(&models.Player{}).Where("id = ?", player.ID).
			Update("portfolio_value", value).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// PlayerTable ranks every player by balance plus current portfolio value,
// rounded to one decimal place.
func (s *playerService) PlayerTable(year int) ([]PlayerStanding, error) {
	var players []models.Player
	if err := s.db.Order("id asc").Find(&players).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	standings := make([]PlayerStanding, 0, len(players))
	for _, player := range players {
		value, err := s.PortfolioValue(player.ID, year)
		if err != nil {
			return nil, err
		}
		standings = append(standings, PlayerStanding{
			PlayerID:   player.ID,
			Name:       player.Name,
			TotalValue: math.Round((player.Balance+value)*10) / 10,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalValue > standings[j].TotalValue
	})
	return standings, nil
}

// Portfolio returns a player's open positions enriched with the current
// year's market data.
func (s *playerService) Portfolio(playerID uint, year int) ([]Holding, error) {
	if _, err := s.GetPlayerByID(playerID); err != nil {
		return nil, err
	}

	var positions []models.PortfolioPosition
	if err := s.db.Where("player_id = ?", playerID).Order("stock_id asc").Find(&positions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	holdings := make([]Holding, 0, len(positions))
	for _, pos := range positions {
		holding := Holding{
			StockID:       pos.StockID,
			Owned:         pos.Quantity,
			PurchasePrice: pos.PurchasePrice,
			YearPurchased: pos.YearPurchased,
		}

		var stock models.Stock
		err := s.db.Where("stock_id = ? AND year = ?", pos.StockID, year).First(&stock).Error
		if err == nil {
			holding.Name = stock.Name
			holding.Category = stock.Category
			holding.CurrentValue = float64(pos.Quantity) * s.pricing.ActivePrice(&stock)
		}
		holdings = append(holdings, holding)
	}
	return holdings, nil
}

// CompletedSales returns a player's sale history, newest first.
func (s *playerService) CompletedSales(playerID uint, page pagination.PageRequest) (*pagination.PageResponse[models.CompletedSale], error) {
	if _, err := s.GetPlayerByID(playerID); err != nil {
		return nil, err
	}
	page.Defaults()

	var total int64
	if err := s.db.Model(&models.CompletedSale{}).Where("player_id = ?", playerID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var sales []models.CompletedSale
	if err := s.db.Where("player_id = ?", playerID).Order("id desc").
		Scopes(pagination.Paginate(page)).Find(&sales).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(sales, page.Page, page.PageSize, total)
	return &response, nil
}

func (s *playerService) WatchList(playerID uint) ([]models.WatchList, error) {
	if _, err := s.GetPlayerByID(playerID); err != nil {
		return nil, err
	}

	var entries []models.WatchList
	if err := s.db.Where("player_id = ?", playerID).Order("stock_id asc").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}

// SetWatchEntry upserts one watch list entry. Disabling both alerts removes
// the entry entirely.
func (s *playerService) SetWatchEntry(playerID uint, stockID int, birthAlert bool, valueAlert *float64, valueAlertEnabled bool) (WatchStatus, error) {
	if _, err := s.GetPlayerByID(playerID); err != nil {
		return WatchNotFound, err
	}

	var entry models.WatchList
	err := s.db.Where("player_id = ? AND stock_id = ?", playerID, stockID).First(&entry).Error
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return WatchNotFound, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !birthAlert && !valueAlertEnabled {
		if !exists {
			return WatchNotFound, nil
		}
		if err := s.db.Delete(&entry).Error; err != nil {
			return WatchNotFound, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return WatchDeleted, nil
	}

	entry.PlayerID = playerID
	entry.StockID = stockID
	entry.BirthAlert = birthAlert
	entry.ValueAlert = valueAlert
	entry.ValueAlertEnabled = valueAlertEnabled
	if err := s.db.Save(&entry).Error; err != nil {
		return WatchNotFound, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return WatchUpdated, nil
}

// RecordHighScores snapshots every player's cached total value to the
// persistent leaderboard. Call after a final portfolio value refresh.
func (s *playerService) RecordHighScores() error {
	var players []models.Player
	if err := s.db.Order("id asc").Find(&players).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, player := range players {
		score := models.HighScore{
			TeamName:   player.Name,
			TotalValue: math.Round((player.Balance+player.PortfolioValue)*10) / 10,
		}
		if err := s.db.Create(&score).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// Leaderboard returns recorded high scores, best first.
func (s *playerService) Leaderboard(page pagination.PageRequest) (*pagination.PageResponse[models.HighScore], error) {
	page.Defaults()

	var total int64
	if err := s.db.Model(&models.HighScore{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var scores []models.HighScore
	if err := s.db.Order("total_value desc").
		Scopes(pagination.Paginate(page)).Find(&scores).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(scores, page.Page, page.PageSize, total)
	return &response, nil
}
