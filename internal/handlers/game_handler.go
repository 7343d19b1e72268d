package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bourse/internal/errors"
	"bourse/internal/pagination"
	"bourse/internal/scheduler"
	"bourse/internal/services"
)

// GameHandler handles game state reads and the admin lifecycle console
type GameHandler struct {
	gameService   services.GameServicer
	playerService services.PlayerServicer
	scheduler     *scheduler.Scheduler
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(gameService services.GameServicer, playerService services.PlayerServicer, sched *scheduler.Scheduler) *GameHandler {
	return &GameHandler{gameService: gameService, playerService: playerService, scheduler: sched}
}

// GetGame returns the game clock and scheduler state
// @Summary     Get the game state
// @Tags        game
// @Produce     json
// @Success     200 {object} models.GameClock "Game clock"
// @Router      /game [get]
func (h *GameHandler) GetGame(c *gin.Context) {
	clock, err := h.gameService.Clock()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game":      clock,
		"scheduler": h.scheduler.State().String(),
	})
}

// GetPlayerTable returns every player ranked by total value
// @Summary     Get the player table
// @Tags        game
// @Produce     json
// @Success     200 {array} services.PlayerStanding "Ranked players"
// @Router      /players [get]
func (h *GameHandler) GetPlayerTable(c *gin.Context) {
	clock, err := h.gameService.Clock()
	if err != nil {
		respondWithError(c, err)
		return
	}

	table, err := h.playerService.PlayerTable(clock.CurrentYear)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": clock.CurrentYear, "players": table})
}

// GetLeaderboard returns recorded high scores
// @Summary     Get the all-time leaderboard
// @Tags        game
// @Produce     json
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.HighScore] "High scores"
// @Router      /leaderboard [get]
func (h *GameHandler) GetLeaderboard(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	board, err := h.playerService.Leaderboard(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// StartGame begins scheduling year ticks
// @Summary     Start the game
// @Tags        admin
// @Produce     json
// @Success     200 {object} models.GameClock "Running game clock"
// @Router      /admin/game/start [post]
func (h *GameHandler) StartGame(c *gin.Context) {
	clock, err := h.scheduler.Start()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": clock})
}

// StopGame halts scheduling and liquidates every portfolio
// @Summary     Stop the game
// @Tags        admin
// @Produce     json
// @Success     200 {object} models.GameClock "Stopped game clock"
// @Router      /admin/game/stop [post]
func (h *GameHandler) StopGame(c *gin.Context) {
	clock, err := h.scheduler.Stop()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": clock})
}

// RestartGame resets the game to the start year
// @Summary     Restart the game
// @Description Wipe players, positions and sales, reset the clock and reseed the AI roster
// @Tags        admin
// @Produce     json
// @Success     200 {object} models.GameClock "Fresh game clock"
// @Router      /admin/game/restart [post]
func (h *GameHandler) RestartGame(c *gin.Context) {
	clock, err := h.scheduler.Restart()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": clock})
}

// SetYearRequest represents the admin year override payload
type SetYearRequest struct {
	Year int `json:"year" binding:"required,game_year"`
}

// SetYear moves the game clock to an arbitrary year
// @Summary     Set the game year
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body SetYearRequest true "Target year"
// @Success     200 {object} models.GameClock "Updated game clock"
// @Failure     400 {object} ErrorResponse "Year out of range"
// @Router      /admin/game/year [put]
func (h *GameHandler) SetYear(c *gin.Context) {
	var req SetYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	clock, err := h.gameService.SetYear(req.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": clock})
}

// ForceTick runs one year update immediately
// @Summary     Force a tick
// @Description Reprice the market, run the AI agents and advance the year without waiting for the schedule
// @Tags        admin
// @Produce     json
// @Success     200 {object} models.GameClock "Game clock after the tick"
// @Router      /admin/game/tick [post]
func (h *GameHandler) ForceTick(c *gin.Context) {
	if err := h.scheduler.AdvanceOneTick(); err != nil {
		respondWithError(c, err)
		return
	}

	clock, err := h.gameService.Clock()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": clock})
}
